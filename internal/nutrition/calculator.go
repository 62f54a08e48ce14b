// Package nutrition holds the energy and macro formulas: BMR, TDEE,
// goal-based targets, water targets and meal calorie distribution.
package nutrition

import (
	"errors"
	"math"

	"diet-agent/internal/models"
)

var ErrIncompleteProfile = errors.New("profile is missing weight, height or age")

// Atwater factors, kcal per gram.
const (
	ProteinKcalPerGram = 4
	CarbsKcalPerGram   = 4
	FatKcalPerGram     = 9
)

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

const defaultActivityMultiplier = 1.2

var goalAdjustments = map[models.GoalType]float64{
	models.GoalWeightLoss:          0.80,
	models.GoalMuscleGain:          1.15,
	models.GoalMaintenance:         1.0,
	models.GoalKeto:                0.85,
	models.GoalIntermittentFasting: 0.90,
}

// MacroRatio is the share of calories from each macronutrient. The three
// fields sum to 1.
type MacroRatio struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

var macroRatios = map[models.GoalType]MacroRatio{
	models.GoalWeightLoss:          {0.35, 0.35, 0.30},
	models.GoalMuscleGain:          {0.30, 0.45, 0.25},
	models.GoalMaintenance:         {0.25, 0.50, 0.25},
	models.GoalKeto:                {0.25, 0.05, 0.70},
	models.GoalIntermittentFasting: {0.30, 0.40, 0.30},
}

func ActivityMultiplier(level models.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return defaultActivityMultiplier
}

func GoalAdjustment(goal models.GoalType) float64 {
	if a, ok := goalAdjustments[goal]; ok {
		return a
	}
	return 1.0
}

func MacroRatios(goal models.GoalType) MacroRatio {
	if r, ok := macroRatios[goal]; ok {
		return r
	}
	return macroRatios[models.GoalMaintenance]
}

// round rounds half away from zero.
func round(x float64) int {
	return int(math.Round(x))
}

func bmrRaw(weightKg, heightCm float64, age int, gender models.Gender) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case models.GenderMale:
		return base + 5
	case models.GenderFemale:
		return base - 161
	default:
		return ((base + 5) + (base - 161)) / 2
	}
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day. Genders
// other than male and female use the mean of both formulas.
func BMR(weightKg, heightCm float64, age int, gender models.Gender) int {
	return round(bmrRaw(weightKg, heightCm, age, gender))
}

// TDEE scales the rounded BMR by the activity multiplier.
func TDEE(weightKg, heightCm float64, age int, gender models.Gender, activity models.ActivityLevel) int {
	bmr := BMR(weightKg, heightCm, age, gender)
	return round(float64(bmr) * ActivityMultiplier(activity))
}

// Targets computes the daily calorie and macro targets. A positive
// customCalories replaces the goal-adjusted TDEE.
func Targets(weightKg, heightCm float64, age int, gender models.Gender, activity models.ActivityLevel, goal models.GoalType, customCalories int) models.NutritionTargets {
	calories := customCalories
	if calories <= 0 {
		tdee := TDEE(weightKg, heightCm, age, gender, activity)
		calories = round(float64(tdee) * GoalAdjustment(goal))
	}
	return MacrosFor(calories, goal)
}

// MacrosFor splits calories into gram targets using the goal's ratios.
func MacrosFor(calories int, goal models.GoalType) models.NutritionTargets {
	r := MacroRatios(goal)
	c := float64(calories)
	return models.NutritionTargets{
		Calories: calories,
		ProteinG: round(c * r.Protein / ProteinKcalPerGram),
		CarbsG:   round(c * r.Carbs / CarbsKcalPerGram),
		FatG:     round(c * r.Fat / FatKcalPerGram),
	}
}

// TargetsForProfile fills in the defaults the front-end uses for unset
// enums and refuses to compute without weight, height and age.
func TargetsForProfile(p *models.Profile) (models.NutritionTargets, error) {
	if p == nil || !p.HasBodyMetrics() {
		return models.NutritionTargets{}, ErrIncompleteProfile
	}
	gender := p.Gender
	if gender == "" {
		gender = models.GenderOther
	}
	activity := p.ActivityLevel
	if activity == "" {
		activity = models.ActivityModerate
	}
	goal := p.GoalType
	if goal == "" {
		goal = models.GoalMaintenance
	}
	return Targets(p.WeightKg, p.HeightCm, p.Age, gender, activity, goal, 0), nil
}

// WaterTarget is the daily water goal in ml: 30 ml per kg, plus 500 ml for
// active and 1000 ml for very active users.
func WaterTarget(weightKg float64, activity models.ActivityLevel) int {
	water := weightKg * 30
	switch activity {
	case models.ActivityActive:
		water += 500
	case models.ActivityVeryActive:
		water += 1000
	}
	return round(water)
}

// WaterTargetForProfile uses 70 kg and moderate activity when unknown.
func WaterTargetForProfile(p *models.Profile) int {
	weight := p.WeightKg
	if weight <= 0 {
		weight = 70
	}
	activity := p.ActivityLevel
	if activity == "" {
		activity = models.ActivityModerate
	}
	return WaterTarget(weight, activity)
}
