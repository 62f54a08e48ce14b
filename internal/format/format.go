// Package format renders plans, progress and reminders as chat messages.
// Output uses the small HTML subset Telegram accepts.
package format

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"diet-agent/internal/models"
)

func esc(s string) string { return html.EscapeString(s) }

// title upper-cases the first letter of each word, treating underscores
// as spaces.
func title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func dateLabel(key, layout string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return key
	}
	return t.Format(layout)
}

func greeting(base, name string) string {
	if name == "" {
		return base + "!"
	}
	return fmt.Sprintf("%s, %s!", base, esc(name))
}

func macroLine(n models.Nutrition) string {
	return fmt.Sprintf("%d cal | P: %dg | C: %dg | F: %dg", n.Calories, n.Protein, n.Carbs, n.Fat)
}

var mainMeals = []struct {
	label string
	get   func(*models.PlanData) *models.Meal
}{
	{"Breakfast", func(d *models.PlanData) *models.Meal { return d.Breakfast }},
	{"Lunch", func(d *models.PlanData) *models.Meal { return d.Lunch }},
	{"Dinner", func(d *models.PlanData) *models.Meal { return d.Dinner }},
}

func MealPlan(plan *models.MealPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Meal Plan - %s</b>\n", dateLabel(plan.PlanDate, "January 02, 2006"))
	for _, mm := range mainMeals {
		m := mm.get(&plan.PlanData)
		if m == nil {
			continue
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n%s\n  %s\n", mm.label, esc(m.Name), macroLine(m.Nutrition()))
	}
	if len(plan.Snacks) > 0 {
		b.WriteString("\n<b>Snacks</b>\n")
		for _, s := range plan.Snacks {
			fmt.Fprintf(&b, "- %s (%d cal)\n", esc(s.Name), s.Calories)
		}
	}
	total := models.Nutrition{Calories: plan.TotalCalories, Protein: plan.TotalProtein, Carbs: plan.TotalCarbs, Fat: plan.TotalFat}
	fmt.Fprintf(&b, "\n<b>Daily Total:</b> %s", macroLine(total))
	return b.String()
}

func MorningPlan(plan *models.MealPlan, name string) string {
	lines := []string{
		fmt.Sprintf("<b>%s</b>\n", greeting("Good morning", name)),
		"Here's your meal plan for today:\n",
	}
	for _, mm := range mainMeals {
		if m := mm.get(&plan.PlanData); m != nil {
			lines = append(lines, fmt.Sprintf("<b>%s</b>: %s", mm.label, esc(m.Name)))
			lines = append(lines, fmt.Sprintf("   %d cal\n", m.Calories))
		}
	}
	lines = append(lines, fmt.Sprintf("\n<b>Total:</b> %d cal", plan.TotalCalories))
	lines = append(lines, "\nUse /plan for full details!")
	return strings.Join(lines, "\n")
}

// EveningStatus picks the closing line of the evening summary.
func EveningStatus(dp models.DailyProgress) string {
	switch {
	case dp.OnTrack:
		return "Great job staying on track today!"
	case dp.MealsLogged == 0:
		return "Don't forget to log your meals!"
	case percent(dp.CaloriesConsumed, dp.CaloriesTarget) < 80:
		return "You're under your calorie target. Consider having a healthy snack!"
	default:
		return "You're slightly over target. Try to balance tomorrow!"
	}
}

func EveningSummary(dp models.DailyProgress, name string) string {
	return fmt.Sprintf(`<b>%s</b>

<b>Today's Summary:</b>
Calories: %d / %d (%d%%)
Protein: %dg / %dg
Meals logged: %d
Water: %dml

%s

Use /log to add anything you missed!`,
		greeting("Good evening", name),
		dp.CaloriesConsumed, dp.CaloriesTarget, percent(dp.CaloriesConsumed, dp.CaloriesTarget),
		dp.ProteinConsumed, dp.ProteinTarget,
		dp.MealsLogged, dp.WaterML, EveningStatus(dp))
}

func DailySummary(dp models.DailyProgress) string {
	status := "Keep going!"
	if dp.OnTrack {
		status = "On track!"
	}
	return fmt.Sprintf(`Daily Summary - %s

Calories: %d / %d (%d%%)
Protein: %dg / %dg (%d%%)
Carbs: %dg / %dg
Fat: %dg / %dg
Water: %dml
Meals logged: %d

Status: %s`,
		dateLabel(dp.Date, "January 02"),
		dp.CaloriesConsumed, dp.CaloriesTarget, percent(dp.CaloriesConsumed, dp.CaloriesTarget),
		dp.ProteinConsumed, dp.ProteinTarget, percent(dp.ProteinConsumed, dp.ProteinTarget),
		dp.CarbsConsumed, dp.CarbsTarget,
		dp.FatConsumed, dp.FatTarget,
		dp.WaterML, dp.MealsLogged, status)
}

func WeeklyReport(r *models.WeeklyReport) string {
	weight := ""
	if r.WeightChange != nil {
		direction := "gained"
		if *r.WeightChange < 0 {
			direction = "lost"
		}
		weight = fmt.Sprintf("\nWeight: %s %.1fkg", direction, math.Abs(*r.WeightChange))
	}
	recs := make([]string, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		recs = append(recs, "- "+rec)
	}
	return fmt.Sprintf(`Weekly Report
%s - %s

Average Daily Intake:
- Calories: %d
- Protein: %dg
- Carbs: %dg
- Fat: %dg
%s
Days on track: %d / %d
Logging streak: %d days

Recommendations:
%s`,
		dateLabel(r.StartDate, "Jan 02"), dateLabel(r.EndDate, "Jan 02"),
		int(math.Round(r.AvgCalories)), int(math.Round(r.AvgProtein)),
		int(math.Round(r.AvgCarbs)), int(math.Round(r.AvgFat)),
		weight, r.DaysOnTrack, r.TotalDays, r.LoggingStreak,
		strings.Join(recs, "\n"))
}

func MealReminder(slot string, m *models.Meal) string {
	name := m.Name
	if name == "" {
		name = "Your planned meal"
	}
	return fmt.Sprintf("Time for %s!\n\n<b>%s</b>\n%d cal\n\nUse /log to track when you're done!", slot, esc(name), m.Calories)
}

// WaterReminderTargetML is the flat daily amount reminders count down from.
const WaterReminderTargetML = 2500

// WaterReminder returns false when the reminder target is already met.
func WaterReminder(consumedML int) (string, bool) {
	if consumedML >= WaterReminderTargetML {
		return "", false
	}
	glasses := (WaterReminderTargetML - consumedML) / models.DefaultGlassML
	return fmt.Sprintf("Stay hydrated!\n\nToday: %dml / %dml\n\nTry to drink %d more glasses today.\n\nUse /water to log!",
		consumedML, WaterReminderTargetML, glasses), true
}
