package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidProfile = errors.New("invalid profile")

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type GoalType string

const (
	GoalWeightLoss          GoalType = "weight_loss"
	GoalMuscleGain          GoalType = "muscle_gain"
	GoalMaintenance         GoalType = "maintenance"
	GoalKeto                GoalType = "keto"
	GoalIntermittentFasting GoalType = "intermittent_fasting"
)

type Budget string

const (
	BudgetCheap    Budget = "cheap"
	BudgetModerate Budget = "moderate"
	BudgetFlexible Budget = "flexible"
)

// Profile is a registered user together with the body metrics and
// preferences the nutrition engine works from. Zero numeric fields mean
// "not provided yet".
type Profile struct {
	ID                 string        `json:"id"`
	TelegramID         int64         `json:"telegram_id"`
	Username           string        `json:"username,omitempty"`
	Name               string        `json:"name,omitempty"`
	Age                int           `json:"age,omitempty"`
	Gender             Gender        `json:"gender,omitempty"`
	HeightCm           float64       `json:"height_cm,omitempty"`
	WeightKg           float64       `json:"weight_kg,omitempty"`
	ActivityLevel      ActivityLevel `json:"activity_level,omitempty"`
	GoalType           GoalType      `json:"goal_type,omitempty"`
	TargetCalories     int           `json:"target_calories,omitempty"`
	TargetProtein      int           `json:"target_protein,omitempty"`
	TargetCarbs        int           `json:"target_carbs,omitempty"`
	TargetFat          int           `json:"target_fat,omitempty"`
	Restrictions       []string      `json:"restrictions"`
	CuisinePreferences []string      `json:"cuisine_preferences"`
	MealFrequency      int           `json:"meal_frequency"`
	Budget             Budget        `json:"budget"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Defaults applied when a profile has no stored targets.
var DefaultTargets = NutritionTargets{Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 65}

const DefaultMealFrequency = 3

// HasBodyMetrics reports whether weight, height and age are all known.
func (p *Profile) HasBodyMetrics() bool {
	return p.WeightKg > 0 && p.HeightCm > 0 && p.Age > 0
}

// Targets returns the stored targets, substituting the defaults for any
// field that was never set.
func (p *Profile) Targets() NutritionTargets {
	t := NutritionTargets{
		Calories: p.TargetCalories,
		ProteinG: p.TargetProtein,
		CarbsG:   p.TargetCarbs,
		FatG:     p.TargetFat,
	}
	if t.Calories == 0 {
		t.Calories = DefaultTargets.Calories
	}
	if t.ProteinG == 0 {
		t.ProteinG = DefaultTargets.ProteinG
	}
	if t.CarbsG == 0 {
		t.CarbsG = DefaultTargets.CarbsG
	}
	if t.FatG == 0 {
		t.FatG = DefaultTargets.FatG
	}
	return t
}

func (p *Profile) SetTargets(t NutritionTargets) {
	p.TargetCalories = t.Calories
	p.TargetProtein = t.ProteinG
	p.TargetCarbs = t.CarbsG
	p.TargetFat = t.FatG
}

// ProfileUpdate carries a partial profile change. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name               *string        `json:"name,omitempty"`
	Age                *int           `json:"age,omitempty"`
	Gender             *Gender        `json:"gender,omitempty"`
	HeightCm           *float64       `json:"height_cm,omitempty"`
	WeightKg           *float64       `json:"weight_kg,omitempty"`
	ActivityLevel      *ActivityLevel `json:"activity_level,omitempty"`
	GoalType           *GoalType      `json:"goal_type,omitempty"`
	TargetCalories     *int           `json:"target_calories,omitempty"`
	TargetProtein      *int           `json:"target_protein,omitempty"`
	TargetCarbs        *int           `json:"target_carbs,omitempty"`
	TargetFat          *int           `json:"target_fat,omitempty"`
	Restrictions       []string       `json:"restrictions,omitempty"`
	CuisinePreferences []string       `json:"cuisine_preferences,omitempty"`
	MealFrequency      *int           `json:"meal_frequency,omitempty"`
	Budget             *Budget        `json:"budget,omitempty"`
}

func (u *ProfileUpdate) Validate() error {
	if u.Age != nil {
		if err := checkRange("age", float64(*u.Age), 10, 120); err != nil {
			return err
		}
	}
	if u.HeightCm != nil {
		if err := checkRange("height_cm", *u.HeightCm, 50, 300); err != nil {
			return err
		}
	}
	if u.WeightKg != nil {
		if err := ValidateWeight(*u.WeightKg); err != nil {
			return err
		}
	}
	if u.TargetCalories != nil {
		if err := checkRange("target_calories", float64(*u.TargetCalories), 800, 10000); err != nil {
			return err
		}
	}
	if u.TargetProtein != nil {
		if err := checkRange("target_protein", float64(*u.TargetProtein), 1, 500); err != nil {
			return err
		}
	}
	if u.TargetCarbs != nil {
		if err := checkRange("target_carbs", float64(*u.TargetCarbs), 1, 1000); err != nil {
			return err
		}
	}
	if u.TargetFat != nil {
		if err := checkRange("target_fat", float64(*u.TargetFat), 1, 500); err != nil {
			return err
		}
	}
	if u.MealFrequency != nil {
		if err := checkRange("meal_frequency", float64(*u.MealFrequency), 1, 8); err != nil {
			return err
		}
	}
	if u.Gender != nil && !oneOf(string(*u.Gender), "male", "female", "other") {
		return fmt.Errorf("%w: gender %q", ErrInvalidProfile, *u.Gender)
	}
	if u.ActivityLevel != nil && !oneOf(string(*u.ActivityLevel), "sedentary", "light", "moderate", "active", "very_active") {
		return fmt.Errorf("%w: activity_level %q", ErrInvalidProfile, *u.ActivityLevel)
	}
	if u.GoalType != nil && !oneOf(string(*u.GoalType), "weight_loss", "muscle_gain", "maintenance", "keto", "intermittent_fasting") {
		return fmt.Errorf("%w: goal_type %q", ErrInvalidProfile, *u.GoalType)
	}
	if u.Budget != nil && !oneOf(string(*u.Budget), "cheap", "moderate", "flexible") {
		return fmt.Errorf("%w: budget %q", ErrInvalidProfile, *u.Budget)
	}
	return nil
}

// Apply copies the set fields onto p. Callers validate first.
func (u *ProfileUpdate) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.WeightKg != nil {
		p.WeightKg = *u.WeightKg
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = *u.ActivityLevel
	}
	if u.GoalType != nil {
		p.GoalType = *u.GoalType
	}
	if u.TargetCalories != nil {
		p.TargetCalories = *u.TargetCalories
	}
	if u.TargetProtein != nil {
		p.TargetProtein = *u.TargetProtein
	}
	if u.TargetCarbs != nil {
		p.TargetCarbs = *u.TargetCarbs
	}
	if u.TargetFat != nil {
		p.TargetFat = *u.TargetFat
	}
	if u.Restrictions != nil {
		p.Restrictions = normalizeTags(u.Restrictions)
	}
	if u.CuisinePreferences != nil {
		p.CuisinePreferences = normalizeTags(u.CuisinePreferences)
	}
	if u.MealFrequency != nil {
		p.MealFrequency = *u.MealFrequency
	}
	if u.Budget != nil {
		p.Budget = *u.Budget
	}
}

// ChangesBodyMetrics reports whether the update touches any input of the
// target formulas.
func (u *ProfileUpdate) ChangesBodyMetrics() bool {
	return u.Age != nil || u.Gender != nil || u.HeightCm != nil || u.WeightKg != nil ||
		u.ActivityLevel != nil || u.GoalType != nil
}

func ValidateWeight(kg float64) error {
	return checkRange("weight_kg", kg, 20, 500)
}

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrInvalidProfile, field, lo, hi, v)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// normalizeTags trims, drops empties and the "none"/"any" sentinels users
// type when they have no preference.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		switch strings.ToLower(t) {
		case "", "none", "any":
			continue
		}
		out = append(out, t)
	}
	return out
}

// Settings holds per-user notification preferences.
type Settings struct {
	UserID                string    `json:"user_id"`
	AIProvider            string    `json:"ai_provider"`
	MorningPlanTime       string    `json:"morning_plan_time"`
	EveningSummaryTime    string    `json:"evening_summary_time"`
	MealReminderTimes     []string  `json:"meal_reminder_times"`
	EnableWaterReminders  bool      `json:"enable_water_reminders"`
	WaterReminderInterval int       `json:"water_reminder_interval"`
	NotificationsEnabled  bool      `json:"notifications_enabled"`
	Timezone              string    `json:"timezone"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                userID,
		AIProvider:            "rule_based",
		MorningPlanTime:       "07:00",
		EveningSummaryTime:    "20:00",
		MealReminderTimes:     []string{"08:00", "12:00", "18:00"},
		EnableWaterReminders:  false,
		WaterReminderInterval: 2,
		NotificationsEnabled:  true,
		Timezone:              "America/New_York",
	}
}
