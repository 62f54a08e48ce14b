package planner

import (
	"fmt"
	"strings"

	"diet-agent/internal/models"
)

const recentMealsInPrompt = 10

func joinOr(tags []string, empty string) string {
	if len(tags) == 0 {
		return empty
	}
	return strings.Join(tags, ", ")
}

// MealPlanPrompt asks for a full day in the PlanData JSON shape.
func MealPlanPrompt(p *models.Profile, recent []string) string {
	if len(recent) > recentMealsInPrompt {
		recent = recent[len(recent)-recentMealsInPrompt:]
	}
	frequency := p.MealFrequency
	if frequency <= 0 {
		frequency = models.DefaultMealFrequency
	}
	budget := p.Budget
	if budget == "" {
		budget = models.BudgetModerate
	}
	return fmt.Sprintf(`Create a daily meal plan with these requirements:
- Total calories: %d
- Meals per day: %d
- Dietary restrictions: %s
- Preferred cuisines: %s
- Budget: %s
- Avoid repeating these recent meals: %s

Return a JSON object with this structure:
{
    "breakfast": {"name": str, "description": str, "calories": int, "protein": int, "carbs": int, "fat": int, "prep_time_minutes": int, "ingredients": [str]},
    "lunch": {"name": str, "description": str, "calories": int, "protein": int, "carbs": int, "fat": int, "prep_time_minutes": int, "ingredients": [str]},
    "dinner": {"name": str, "description": str, "calories": int, "protein": int, "carbs": int, "fat": int, "prep_time_minutes": int, "ingredients": [str]},
    "snacks": [{"name": str, "calories": int, "protein": int, "carbs": int, "fat": int}],
    "shopping_list": [{"name": str, "quantity": str, "category": str}]
}

Make sure total calories match the target. Only return the JSON.`,
		p.Targets().Calories, frequency,
		joinOr(p.Restrictions, "none"), joinOr(p.CuisinePreferences, "any"),
		budget, joinOr(recent, "none"))
}

func FoodLogPrompt(description string) string {
	return fmt.Sprintf(`Estimate the nutritional content of this food:
%q

Return JSON with: {"calories": int, "protein": int, "carbs": int, "fat": int}
Only return the JSON, nothing else.`, description)
}

func SuggestionPrompt(p *models.Profile, slot string, remaining int) string {
	budget := p.Budget
	if budget == "" {
		budget = models.BudgetModerate
	}
	return fmt.Sprintf(`Suggest a %s meal with approximately %d calories.
Restrictions: %s
Preferred cuisines: %s
Budget: %s

Return JSON: {"name": str, "description": str, "calories": int, "protein": int, "carbs": int, "fat": int, "prep_time_minutes": int}`,
		slot, remaining, joinOr(p.Restrictions, "none"), joinOr(p.CuisinePreferences, "any"), budget)
}
