package planner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"diet-agent/internal/catalog"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
)

const (
	planPrepMinutes       = 20
	suggestionPrepMinutes = 15
)

// RuleBased builds plans from the meal catalog without any model call.
// It never fails and is the fallback for every other provider.
type RuleBased struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleBased seeds from the clock when rng is nil.
func NewRuleBased(rng *rand.Rand) *RuleBased {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1|1))
	}
	return &RuleBased{rng: rng}
}

func (r *RuleBased) Name() string { return ProviderRuleBased }

func (r *RuleBased) pick(candidates []catalog.Template, recent []string) catalog.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	return catalog.PickRandom(r.rng, candidates, recent)
}

func (r *RuleBased) GenerateMealPlan(_ context.Context, p *models.Profile, recent []string) (*models.PlanData, error) {
	dist := nutrition.MealDistribution(p.MealFrequency, p.GoalType)
	data := &models.PlanData{Snacks: []models.Meal{}, ShoppingList: []models.ShoppingItem{}}

	for _, slot := range []nutrition.Slot{nutrition.SlotBreakfast, nutrition.SlotLunch, nutrition.SlotDinner} {
		if !dist.Has(slot) {
			continue
		}
		candidates := catalog.Candidates(string(slot), p.Restrictions, p.CuisinePreferences)
		meal := r.pick(candidates, recent).Meal(fmt.Sprintf("A healthy %s option", slot), planPrepMinutes)
		switch slot {
		case nutrition.SlotBreakfast:
			data.Breakfast = &meal
		case nutrition.SlotLunch:
			data.Lunch = &meal
		case nutrition.SlotDinner:
			data.Dinner = &meal
		}
	}

	snackCalories := int(float64(p.Targets().Calories) * dist.SnackShare())
	if snackCalories > 0 {
		snacks := catalog.FilterByRestrictions(catalog.ForSlot(catalog.SlotSnacks), p.Restrictions)
		data.Snacks = append(data.Snacks, r.pick(snacks, nil).Meal("", 0))
	}
	return data, nil
}

func (r *RuleBased) ParseFoodLog(_ context.Context, text string) (models.Nutrition, error) {
	return nutrition.EstimateFoodNutrition(text), nil
}

// SuggestMeal returns the template closest to the remaining calories.
func (r *RuleBased) SuggestMeal(_ context.Context, p *models.Profile, slot string, remaining int) (models.Meal, error) {
	candidates := catalog.Candidates(slot, p.Restrictions, p.CuisinePreferences)
	best := catalog.Closest(candidates, remaining)
	return best.Meal(fmt.Sprintf("A healthy %s option", slot), suggestionPrepMinutes), nil
}
