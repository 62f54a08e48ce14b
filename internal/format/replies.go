package format

import (
	"fmt"
	"math"
	"strings"

	"diet-agent/internal/models"
)

const (
	CompleteProfile = "Please complete your profile setup first.\nUse /start to begin."
	MissingMetrics  = "Missing profile data. Please use /start to complete setup."
)

// Welcome greets a user on /start. Users who already gave a name are
// welcomed back.
func Welcome(p *models.Profile) string {
	if p.Name != "" {
		return fmt.Sprintf("Welcome back, %s!\n\nUse /plan to see today's meal plan\nUse /help to see all commands", esc(p.Name))
	}
	return "Welcome to Diet Agent!\n\nI'll help you plan meals, track nutrition, and reach your health goals.\n\nLet's set up your profile. What's your name?"
}

const Help = `<b>Diet Agent Commands</b>

<b>Meal Planning:</b>
/plan - Get today's meal plan
/suggest - Get a meal suggestion
/snack - Get healthy snack ideas

<b>Logging:</b>
/log [food] - Log what you ate
/quick - Quick log common foods
/water [ml] - Log water (default 250ml)
/weight [kg] - Log your weight

<b>Progress:</b>
/progress - Weekly progress report
/goals - View/update goals

<b>Settings:</b>
/avoid - Foods to avoid
/settings - Adjust preferences
/help - Show this help`

func FoodLogged(description string, n models.Nutrition, consumed, target int) string {
	return fmt.Sprintf("Logged: %s\nEstimated: %s\n\nDaily total: %d / %d cal",
		esc(description), macroLine(n), consumed, target)
}

func Suggestion(m models.Meal) string {
	prep := m.PrepMinutes
	if prep == 0 {
		prep = 15
	}
	return fmt.Sprintf(`<b>Suggestion: %s</b>

%s

Nutrition:
- Calories: %d
- Protein: %dg
- Carbs: %dg
- Fat: %dg
- Prep time: ~%d min

Use /log %s to add it to your food diary.`,
		esc(m.Name), esc(m.Description), m.Calories, m.Protein, m.Carbs, m.Fat, prep, esc(m.Name))
}

func Snack(m models.Meal, remaining int) string {
	return fmt.Sprintf("<b>Snack idea: %s</b>\n\n%s\n\nRemaining today: %d cal\n\nUse /log %s to track it.",
		esc(m.Name), macroLine(m.Nutrition()), remaining, esc(m.Name))
}

func WaterLogged(amountML, totalML, targetML int) string {
	return fmt.Sprintf("Logged %dml of water\n\nToday: %dml / %dml (%d%%)", amountML, totalML, targetML, percent(totalML, targetML))
}

// WeightHistory lists up to seven newest-first logs and the change
// across them.
func WeightHistory(history []models.WeightLog, change *float64) string {
	if len(history) == 0 {
		return "No weight logs yet.\n\nLog your weight: /weight 70.5"
	}
	lines := []string{"<b>Weight History (Last 7 days)</b>\n"}
	for i, l := range history {
		if i == 7 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %.1f kg", l.LoggedAt.Format("Jan 02"), l.WeightKg))
	}
	if change != nil {
		direction := "up"
		if *change < 0 {
			direction = "down"
		}
		lines = append(lines, fmt.Sprintf("\nChange: %.1f kg %s", math.Abs(*change), direction))
	}
	return strings.Join(lines, "\n")
}

// WeightLogged mentions the weekly change once it exceeds 0.1 kg.
func WeightLogged(weightKg float64, change *float64) string {
	msg := fmt.Sprintf("Logged: %g kg", weightKg)
	if change != nil && math.Abs(*change) > 0.1 {
		direction := "gained"
		if *change < 0 {
			direction = "lost"
		}
		msg += fmt.Sprintf("\n\nThis week: %s %.1f kg", direction, math.Abs(*change))
	}
	return msg
}

func orNotSet(v int, unit string) string {
	if v == 0 {
		return "Not set"
	}
	return fmt.Sprintf("%d%s", v, unit)
}

func Goals(p *models.Profile) string {
	goal := "Not set"
	if p.GoalType != "" {
		goal = title(string(p.GoalType))
	}
	weight := "Not set"
	if p.WeightKg > 0 {
		weight = fmt.Sprintf("%g", p.WeightKg)
	}
	return fmt.Sprintf(`<b>Your Current Goals</b>

Goal: %s
Current weight: %s kg

<b>Daily Targets:</b>
- Calories: %s
- Protein: %s
- Carbs: %s
- Fat: %s`,
		goal, weight,
		orNotSet(p.TargetCalories, ""), orNotSet(p.TargetProtein, "g"),
		orNotSet(p.TargetCarbs, "g"), orNotSet(p.TargetFat, "g"))
}

func Targets(heading string, t models.NutritionTargets) string {
	return fmt.Sprintf("%s\n\n- Calories: %d\n- Protein: %dg\n- Carbs: %dg\n- Fat: %dg", heading, t.Calories, t.ProteinG, t.CarbsG, t.FatG)
}

// FoodsToAvoid takes restrictions paired with their food lists, in order.
func FoodsToAvoid(restrictions []string, foods [][]string) string {
	if len(restrictions) == 0 {
		return "You haven't set any dietary restrictions.\n\nUse /settings to add restrictions."
	}
	lines := []string{"<b>Foods to Avoid</b>\n"}
	for i, r := range restrictions {
		lines = append(lines, fmt.Sprintf("\n<b>%s:</b>", esc(title(r))))
		if i < len(foods) {
			lines = append(lines, esc(strings.Join(foods[i], ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func Settings(s models.Settings, p *models.Profile) string {
	notif := "Off"
	if s.NotificationsEnabled {
		notif = "On"
	}
	water := "Off"
	if s.EnableWaterReminders {
		water = fmt.Sprintf("every %dh", s.WaterReminderInterval)
	}
	restrictions := "None"
	if len(p.Restrictions) > 0 {
		restrictions = strings.Join(p.Restrictions, ", ")
	}
	cuisines := "Any"
	if len(p.CuisinePreferences) > 0 {
		cuisines = strings.Join(p.CuisinePreferences, ", ")
	}
	return fmt.Sprintf(`<b>Settings</b>

AI Provider: %s
Morning plan: %s
Evening summary: %s
Meal reminders: %s
Water reminders: %s
Notifications: %s
Timezone: %s

Restrictions: %s
Cuisines: %s`,
		s.AIProvider, s.MorningPlanTime, s.EveningSummaryTime,
		strings.Join(s.MealReminderTimes, ", "), water, notif, s.Timezone,
		esc(restrictions), esc(cuisines))
}
