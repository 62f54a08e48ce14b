package nutrition

import "diet-agent/internal/models"

type Slot string

const (
	SlotBreakfast       Slot = "breakfast"
	SlotMidMorningSnack Slot = "mid_morning_snack"
	SlotLunch           Slot = "lunch"
	SlotAfternoonSnack  Slot = "afternoon_snack"
	SlotDinner          Slot = "dinner"
	SlotEveningSnack    Slot = "evening_snack"
	SlotSnacks          Slot = "snacks"
)

func (s Slot) IsSnack() bool {
	switch s {
	case SlotSnacks, SlotMidMorningSnack, SlotAfternoonSnack, SlotEveningSnack:
		return true
	}
	return false
}

type SlotShare struct {
	Slot  Slot
	Share float64
}

// Distribution is the ordered share of daily calories per meal slot.
// Every table entry sums to 1.
type Distribution []SlotShare

// Snack share used by plan generation when the table has no snack slot.
const DefaultSnackShare = 0.10

var (
	fastingThreeOrMore = Distribution{{SlotLunch, 0.45}, {SlotDinner, 0.45}, {SlotSnacks, 0.10}}
	fastingTwoOrLess   = Distribution{{SlotLunch, 0.50}, {SlotDinner, 0.50}}

	byFrequency = map[int]Distribution{
		1: {{SlotDinner, 1.0}},
		2: {{SlotLunch, 0.45}, {SlotDinner, 0.55}},
		3: {{SlotBreakfast, 0.25}, {SlotLunch, 0.35}, {SlotDinner, 0.40}},
		4: {{SlotBreakfast, 0.20}, {SlotLunch, 0.30}, {SlotDinner, 0.35}, {SlotSnacks, 0.15}},
		5: {
			{SlotBreakfast, 0.20},
			{SlotMidMorningSnack, 0.10},
			{SlotLunch, 0.25},
			{SlotAfternoonSnack, 0.10},
			{SlotDinner, 0.30},
			{SlotEveningSnack, 0.05},
		},
	}
)

// MealDistribution maps a meal frequency to per-slot calorie shares.
// Intermittent fasting follows a 16:8 window and never has breakfast.
// Frequencies of five or more share one table; anything below one falls
// back to three meals.
func MealDistribution(mealFrequency int, goal models.GoalType) Distribution {
	if goal == models.GoalIntermittentFasting {
		if mealFrequency >= 3 {
			return clone(fastingThreeOrMore)
		}
		return clone(fastingTwoOrLess)
	}
	switch {
	case mealFrequency >= 5:
		return clone(byFrequency[5])
	case mealFrequency >= 1:
		return clone(byFrequency[mealFrequency])
	default:
		return clone(byFrequency[3])
	}
}

func clone(d Distribution) Distribution {
	return append(Distribution(nil), d...)
}

func (d Distribution) Has(slot Slot) bool {
	for _, s := range d {
		if s.Slot == slot {
			return true
		}
	}
	return false
}

func (d Distribution) Share(slot Slot) float64 {
	for _, s := range d {
		if s.Slot == slot {
			return s.Share
		}
	}
	return 0
}

// SnackShare sums every snack slot, or returns DefaultSnackShare when the
// distribution has none.
func (d Distribution) SnackShare() float64 {
	var total float64
	found := false
	for _, s := range d {
		if s.Slot.IsSnack() {
			total += s.Share
			found = true
		}
	}
	if !found {
		return DefaultSnackShare
	}
	return total
}

func (d Distribution) Total() float64 {
	var total float64
	for _, s := range d {
		total += s.Share
	}
	return total
}
