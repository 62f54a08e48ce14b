package models

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealOther     MealType = "other"
)

// MealTypeAt infers the slot of a meal eaten at t.
func MealTypeAt(t time.Time) MealType {
	switch h := t.Hour(); {
	case h < 10:
		return MealBreakfast
	case h < 14:
		return MealLunch
	case h < 17:
		return MealSnack
	default:
		return MealDinner
	}
}

func ParseMealType(s string) MealType {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return MealType(s)
	default:
		return MealOther
	}
}

// Where a food log's numbers came from.
const (
	SourceAIParsed = "ai_parsed"
	SourceQuick    = "quick"
	SourceSync     = "sync"
	SourceManual   = "manual"
)

type FoodLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LoggedAt    time.Time `json:"logged_at"`
	MealType    MealType  `json:"meal_type"`
	Description string    `json:"food_description"`
	PortionSize string    `json:"portion_size,omitempty"`
	Nutrition
	Notes  string `json:"notes,omitempty"`
	Source string `json:"source"`
}

type WaterLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	LoggedAt time.Time `json:"logged_at"`
	AmountML int       `json:"amount_ml"`
}

const DefaultGlassML = 250

type WeightLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	LoggedAt time.Time `json:"logged_at"`
	WeightKg float64   `json:"weight_kg"`
	Notes    string    `json:"notes,omitempty"`
}

type StreakType string

const (
	StreakLogging       StreakType = "logging"
	StreakPlanFollowing StreakType = "plan_following"
	StreakWater         StreakType = "water"
)

type Streak struct {
	UserID           string     `json:"user_id"`
	Type             StreakType `json:"streak_type"`
	Current          int        `json:"current_streak"`
	Longest          int        `json:"longest_streak"`
	LastActivityDate string     `json:"last_activity_date,omitempty"`
}

// Advance records activity on day. A streak moves at most once per day:
// activity on the day after the last one extends it, a gap restarts it at
// one. The second result is false when day was already counted or is
// earlier than the last counted day.
func (s Streak) Advance(day time.Time) (Streak, bool) {
	today := DateKey(day)
	if s.LastActivityDate != "" && today <= s.LastActivityDate {
		return s, false
	}
	yesterday := DateKey(StartOfDay(day).AddDate(0, 0, -1))
	if s.LastActivityDate != "" && s.LastActivityDate == yesterday {
		s.Current++
	} else {
		s.Current = 1
	}
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = today
	return s, true
}

// DailyTotals is the sum of one day's food logs.
type DailyTotals struct {
	Nutrition
	MealsLogged int `json:"meals_logged"`
}

type DailyProgress struct {
	Date             string `json:"date"`
	CaloriesConsumed int    `json:"calories_consumed"`
	CaloriesTarget   int    `json:"calories_target"`
	ProteinConsumed  int    `json:"protein_consumed"`
	ProteinTarget    int    `json:"protein_target"`
	CarbsConsumed    int    `json:"carbs_consumed"`
	CarbsTarget      int    `json:"carbs_target"`
	FatConsumed      int    `json:"fat_consumed"`
	FatTarget        int    `json:"fat_target"`
	WaterML          int    `json:"water_ml"`
	MealsLogged      int    `json:"meals_logged"`
	OnTrack          bool   `json:"on_track"`
}

type WeeklyReport struct {
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Days            []DailyProgress `json:"days"`
	AvgCalories     float64         `json:"avg_calories"`
	AvgProtein      float64         `json:"avg_protein"`
	AvgCarbs        float64         `json:"avg_carbs"`
	AvgFat          float64         `json:"avg_fat"`
	AvgWaterML      float64         `json:"avg_water_ml"`
	WeightChange    *float64        `json:"weight_change,omitempty"`
	DaysOnTrack     int             `json:"days_on_track"`
	TotalDays       int             `json:"total_days"`
	LoggingStreak   int             `json:"logging_streak"`
	Recommendations []string        `json:"recommendations"`
}
