package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"diet-agent/internal/format"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
)

var targetOpts struct {
	weightKg float64
	heightCm float64
	age      int
	gender   string
	activity string
	goal     string
	calories int
	meals    int
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute daily calorie, macro and water targets",
	Example: "  diet-agent targets --weight 80 --height 180 --age 30 --gender male\n" +
		"  diet-agent targets --weight 65 --height 165 --age 41 --goal weight_loss --meals 5",
	RunE: func(cmd *cobra.Command, args []string) error {
		gender := models.Gender(targetOpts.gender)
		activity := models.ActivityLevel(targetOpts.activity)
		goal := models.GoalType(targetOpts.goal)
		upd := models.ProfileUpdate{
			Age:           &targetOpts.age,
			Gender:        &gender,
			HeightCm:      &targetOpts.heightCm,
			WeightKg:      &targetOpts.weightKg,
			ActivityLevel: &activity,
			GoalType:      &goal,
			MealFrequency: &targetOpts.meals,
		}
		if targetOpts.calories > 0 {
			upd.TargetCalories = &targetOpts.calories
		}
		if err := upd.Validate(); err != nil {
			return err
		}

		w, h, a := targetOpts.weightKg, targetOpts.heightCm, targetOpts.age
		t := nutrition.Targets(w, h, a, gender, activity, goal, targetOpts.calories)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMR: %d kcal\n", nutrition.BMR(w, h, a, gender))
		fmt.Fprintf(out, "TDEE: %d kcal\n\n", nutrition.TDEE(w, h, a, gender, activity))
		fmt.Fprintln(out, format.Targets("Daily targets", t))
		fmt.Fprintf(out, "- Water: %dml\n\nMeal split:\n", nutrition.WaterTarget(w, activity))
		for _, s := range nutrition.MealDistribution(targetOpts.meals, goal) {
			kcal := int(math.Round(float64(t.Calories) * s.Share))
			fmt.Fprintf(out, "- %s: %d kcal (%.0f%%)\n", s.Slot, kcal, s.Share*100)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	f := targetsCmd.Flags()
	f.Float64Var(&targetOpts.weightKg, "weight", 0, "Body weight in kg")
	f.Float64Var(&targetOpts.heightCm, "height", 0, "Height in cm")
	f.IntVar(&targetOpts.age, "age", 0, "Age in years")
	f.StringVar(&targetOpts.gender, "gender", string(models.GenderOther), "male, female or other")
	f.StringVar(&targetOpts.activity, "activity", string(models.ActivityModerate), "sedentary, light, moderate, active or very_active")
	f.StringVar(&targetOpts.goal, "goal", string(models.GoalMaintenance), "weight_loss, muscle_gain, maintenance, keto or intermittent_fasting")
	f.IntVar(&targetOpts.calories, "calories", 0, "Fixed calorie target instead of the computed one")
	f.IntVar(&targetOpts.meals, "meals", models.DefaultMealFrequency, "Meals per day")
	_ = targetsCmd.MarkFlagRequired("weight")
	_ = targetsCmd.MarkFlagRequired("height")
	_ = targetsCmd.MarkFlagRequired("age")
}
