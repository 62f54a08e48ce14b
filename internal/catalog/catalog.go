// Package catalog is the fixed set of meal templates the rule-based
// planner draws from, with the dietary and cuisine filters applied to it.
package catalog

import (
	"strings"

	"diet-agent/internal/models"
)

// Version identifies the template set. Bump it when templates change so
// persisted plans can be traced back to the catalog that produced them.
const Version = 1

// AnyCuisine tags a template as suitable for every cuisine preference.
const AnyCuisine = "any"

type Template struct {
	Name     string
	Calories int
	Protein  int
	Carbs    int
	Fat      int
	Cuisines []string
}

func (t Template) Nutrition() models.Nutrition {
	return models.Nutrition{Calories: t.Calories, Protein: t.Protein, Carbs: t.Carbs, Fat: t.Fat}
}

// Meal turns the template into a plan meal.
func (t Template) Meal(description string, prepMinutes int) models.Meal {
	return models.Meal{
		Name:        t.Name,
		Description: description,
		Ingredients: []string{},
		Calories:    t.Calories,
		Protein:     t.Protein,
		Carbs:       t.Carbs,
		Fat:         t.Fat,
		PrepMinutes: prepMinutes,
		Cuisines:    append([]string(nil), t.Cuisines...),
	}
}

const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnacks    = "snacks"
)

var templates = map[string][]Template{
	SlotBreakfast: {
		{"Oatmeal with Berries", 350, 12, 55, 8, []string{"american", "any"}},
		{"Scrambled Eggs with Toast", 400, 20, 30, 22, []string{"american", "any"}},
		{"Greek Yogurt Parfait", 300, 18, 40, 8, []string{"mediterranean", "any"}},
		{"Avocado Toast", 320, 8, 35, 18, []string{"american", "any"}},
		{"Idli with Sambar", 280, 10, 50, 4, []string{"indian"}},
		{"Poha", 250, 6, 45, 6, []string{"indian"}},
		{"Smoothie Bowl", 380, 15, 60, 10, []string{"any"}},
	},
	SlotLunch: {
		{"Grilled Chicken Salad", 450, 35, 20, 25, []string{"american", "any"}},
		{"Quinoa Buddha Bowl", 500, 18, 65, 18, []string{"any"}},
		{"Turkey Wrap", 420, 28, 40, 16, []string{"american", "any"}},
		{"Dal with Rice", 480, 16, 70, 12, []string{"indian"}},
		{"Mediterranean Bowl", 520, 22, 55, 24, []string{"mediterranean"}},
		{"Stir Fry with Tofu", 400, 20, 45, 15, []string{"asian", "any"}},
		{"Chicken Tikka with Roti", 550, 35, 50, 20, []string{"indian"}},
	},
	SlotDinner: {
		{"Baked Salmon with Vegetables", 500, 40, 25, 28, []string{"any"}},
		{"Chicken Stir Fry", 480, 35, 40, 18, []string{"asian", "any"}},
		{"Vegetable Curry with Rice", 520, 14, 75, 16, []string{"indian"}},
		{"Grilled Steak with Sweet Potato", 600, 45, 40, 28, []string{"american", "any"}},
		{"Pasta Primavera", 480, 16, 70, 14, []string{"italian", "any"}},
		{"Fish Tacos", 450, 28, 45, 18, []string{"mexican", "any"}},
		{"Palak Paneer with Naan", 550, 22, 55, 26, []string{"indian"}},
	},
	SlotSnacks: {
		{"Apple with Almond Butter", 200, 5, 25, 10, []string{"any"}},
		{"Greek Yogurt", 150, 15, 10, 5, []string{"any"}},
		{"Mixed Nuts", 180, 5, 8, 16, []string{"any"}},
		{"Hummus with Veggies", 150, 6, 15, 8, []string{"mediterranean", "any"}},
		{"Protein Bar", 200, 20, 22, 8, []string{"any"}},
		{"Roasted Chickpeas", 130, 6, 20, 3, []string{"indian", "any"}},
	},
}

// ForSlot returns a copy of the templates for a slot. Unknown slots,
// including "snack", get the snack templates.
func ForSlot(slot string) []Template {
	list, ok := templates[strings.ToLower(slot)]
	if !ok {
		list = templates[SlotSnacks]
	}
	return append([]Template(nil), list...)
}
