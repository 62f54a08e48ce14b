package models

import (
	"fmt"
	"time"
)

type NutritionTargets struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Nutrition is a calorie/macro estimate for a single food or meal.
type Nutrition struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

func (n Nutrition) Valid() bool {
	return n.Calories >= 0 && n.Protein >= 0 && n.Carbs >= 0 && n.Fat >= 0
}

type Meal struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Ingredients   []string `json:"ingredients,omitempty"`
	Calories      int      `json:"calories"`
	Protein       int      `json:"protein"`
	Carbs         int      `json:"carbs"`
	Fat           int      `json:"fat"`
	PrepMinutes   int      `json:"prep_time_minutes,omitempty"`
	Cuisines      []string `json:"cuisines,omitempty"`
	EstimatedCost float64  `json:"estimated_cost,omitempty"`
}

func (m Meal) Nutrition() Nutrition {
	return Nutrition{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
}

type ShoppingItem struct {
	Name          string  `json:"name"`
	Quantity      string  `json:"quantity"`
	Category      string  `json:"category,omitempty"`
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
}

// PlanData is what a meal plan provider returns: the meals of one day
// without identity or totals. Its JSON shape is the one requested from AI
// providers.
type PlanData struct {
	Breakfast    *Meal          `json:"breakfast,omitempty"`
	Lunch        *Meal          `json:"lunch,omitempty"`
	Dinner       *Meal          `json:"dinner,omitempty"`
	Snacks       []Meal         `json:"snacks"`
	ShoppingList []ShoppingItem `json:"shopping_list"`
}

// Meals returns breakfast, lunch and dinner (those present) followed by
// the snacks.
func (d *PlanData) Meals() []Meal {
	var out []Meal
	for _, m := range []*Meal{d.Breakfast, d.Lunch, d.Dinner} {
		if m != nil {
			out = append(out, *m)
		}
	}
	return append(out, d.Snacks...)
}

func (d *PlanData) Totals() Nutrition {
	var total Nutrition
	for _, m := range d.Meals() {
		total = total.Add(m.Nutrition())
	}
	return total
}

// MealNames lists the main-meal names, used to avoid repeating them in
// the following days' plans.
func (d *PlanData) MealNames() []string {
	var names []string
	for _, m := range []*Meal{d.Breakfast, d.Lunch, d.Dinner} {
		if m != nil && m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}

// MealPlan is the persisted plan for one user and one date. At most one
// exists per (user, date); regenerating overwrites it.
type MealPlan struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	PlanDate string `json:"plan_date"`
	PlanData
	TotalCalories int       `json:"total_calories"`
	TotalProtein  int       `json:"total_protein"`
	TotalCarbs    int       `json:"total_carbs"`
	TotalFat      int       `json:"total_fat"`
	EstimatedCost float64   `json:"estimated_cost,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMealPlan builds a plan whose totals are the sum of its meals and
// snacks.
func NewMealPlan(userID string, day time.Time, data PlanData) *MealPlan {
	if data.Snacks == nil {
		data.Snacks = []Meal{}
	}
	if data.ShoppingList == nil {
		data.ShoppingList = []ShoppingItem{}
	}
	total := data.Totals()
	var cost float64
	for _, m := range data.Meals() {
		cost += m.EstimatedCost
	}
	return &MealPlan{
		UserID:        userID,
		PlanDate:      DateKey(day),
		PlanData:      data,
		TotalCalories: total.Calories,
		TotalProtein:  total.Protein,
		TotalCarbs:    total.Carbs,
		TotalFat:      total.Fat,
		EstimatedCost: cost,
	}
}

// Verify checks the totals invariant on a plan read back from storage.
func (p *MealPlan) Verify() error {
	total := p.Totals()
	got := Nutrition{Calories: p.TotalCalories, Protein: p.TotalProtein, Carbs: p.TotalCarbs, Fat: p.TotalFat}
	if total != got {
		return fmt.Errorf("meal plan %s totals %+v do not match meals %+v", p.PlanDate, got, total)
	}
	return nil
}

const dateLayout = "2006-01-02"

// DateKey formats the calendar date of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
