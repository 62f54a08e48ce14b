package nutrition

import (
	"strings"

	"diet-agent/internal/models"
)

type keywordEstimate struct {
	keyword string
	models.Nutrition
}

// Per-serving estimates. Order matters: the first keyword contained in a
// description wins, so "chicken salad" resolves to chicken.
var keywordEstimates = []keywordEstimate{
	// proteins
	{"chicken", models.Nutrition{Calories: 165, Protein: 31, Carbs: 0, Fat: 4}},
	{"beef", models.Nutrition{Calories: 250, Protein: 26, Carbs: 0, Fat: 15}},
	{"fish", models.Nutrition{Calories: 150, Protein: 25, Carbs: 0, Fat: 5}},
	{"egg", models.Nutrition{Calories: 78, Protein: 6, Carbs: 1, Fat: 5}},
	{"tofu", models.Nutrition{Calories: 80, Protein: 8, Carbs: 2, Fat: 4}},

	// carbs
	{"rice", models.Nutrition{Calories: 200, Protein: 4, Carbs: 45, Fat: 0}},
	{"bread", models.Nutrition{Calories: 80, Protein: 3, Carbs: 15, Fat: 1}},
	{"pasta", models.Nutrition{Calories: 220, Protein: 8, Carbs: 43, Fat: 1}},
	{"potato", models.Nutrition{Calories: 160, Protein: 4, Carbs: 37, Fat: 0}},
	{"oatmeal", models.Nutrition{Calories: 150, Protein: 5, Carbs: 27, Fat: 3}},

	// dairy
	{"milk", models.Nutrition{Calories: 150, Protein: 8, Carbs: 12, Fat: 8}},
	{"yogurt", models.Nutrition{Calories: 100, Protein: 10, Carbs: 6, Fat: 3}},
	{"cheese", models.Nutrition{Calories: 110, Protein: 7, Carbs: 0, Fat: 9}},

	// vegetables
	{"salad", models.Nutrition{Calories: 50, Protein: 2, Carbs: 10, Fat: 0}},
	{"vegetables", models.Nutrition{Calories: 50, Protein: 2, Carbs: 10, Fat: 0}},
	{"broccoli", models.Nutrition{Calories: 55, Protein: 4, Carbs: 11, Fat: 1}},

	// fruit
	{"apple", models.Nutrition{Calories: 95, Protein: 0, Carbs: 25, Fat: 0}},
	{"banana", models.Nutrition{Calories: 105, Protein: 1, Carbs: 27, Fat: 0}},
	{"orange", models.Nutrition{Calories: 62, Protein: 1, Carbs: 15, Fat: 0}},

	// common meals
	{"sandwich", models.Nutrition{Calories: 350, Protein: 15, Carbs: 40, Fat: 15}},
	{"burger", models.Nutrition{Calories: 500, Protein: 25, Carbs: 40, Fat: 25}},
	{"pizza", models.Nutrition{Calories: 285, Protein: 12, Carbs: 36, Fat: 10}},
	{"salad bowl", models.Nutrition{Calories: 300, Protein: 15, Carbs: 30, Fat: 12}},
	{"smoothie", models.Nutrition{Calories: 250, Protein: 8, Carbs: 45, Fat: 5}},

	// snacks
	{"nuts", models.Nutrition{Calories: 170, Protein: 5, Carbs: 6, Fat: 15}},
	{"protein bar", models.Nutrition{Calories: 200, Protein: 20, Carbs: 20, Fat: 8}},
	{"cookie", models.Nutrition{Calories: 150, Protein: 2, Carbs: 20, Fat: 7}},
}

// DefaultEstimate is returned when no keyword matches.
var DefaultEstimate = models.Nutrition{Calories: 200, Protein: 10, Carbs: 25, Fat: 8}

// EstimateFoodNutrition is the rule-based stand-in for AI food parsing:
// a case-insensitive substring match against the keyword table.
func EstimateFoodNutrition(description string) models.Nutrition {
	lower := strings.ToLower(description)
	for _, e := range keywordEstimates {
		if strings.Contains(lower, e.keyword) {
			return e.Nutrition
		}
	}
	return DefaultEstimate
}
