package coach

import (
	"context"
	"math"

	"diet-agent/internal/catalog"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
)

// remaining is today's calorie target minus what was already logged.
func (s *Service) remaining(ctx context.Context, p *models.Profile) (int, error) {
	totals, err := s.store.DailyTotals(ctx, p.ID, s.Today())
	if err != nil {
		return 0, err
	}
	return p.Targets().Calories - totals.Calories, nil
}

// Suggest proposes a meal for the slot implied by the current hour, sized
// to the calories left today.
func (s *Service) Suggest(ctx context.Context, p *models.Profile) (models.Meal, int, error) {
	left, err := s.remaining(ctx, p)
	if err != nil {
		return models.Meal{}, 0, err
	}
	slot := string(models.MealTypeAt(s.Now()))
	return s.plannerFor(ctx, p).SuggestMeal(ctx, p, slot, left), left, nil
}

// SnackSize picks a snack calorie budget from what is left today.
func SnackSize(remaining int) int {
	switch {
	case remaining > 300:
		return 200
	case remaining > 150:
		return 100
	default:
		return 50
	}
}

func (s *Service) Snack(ctx context.Context, p *models.Profile) (models.Meal, int, error) {
	left, err := s.remaining(ctx, p)
	if err != nil {
		return models.Meal{}, 0, err
	}
	meal := s.plannerFor(ctx, p).SuggestMeal(ctx, p, string(models.MealSnack), SnackSize(left))
	return meal, left, nil
}

func (s *Service) DailyProgress(ctx context.Context, p *models.Profile) (models.DailyProgress, error) {
	return s.tracker.DailyProgress(ctx, p, s.Today())
}

// WeeklyReport covers the seven days ending today.
func (s *Service) WeeklyReport(ctx context.Context, p *models.Profile) (*models.WeeklyReport, error) {
	return s.tracker.WeeklyReport(ctx, p, s.Today())
}

type CalorieStats struct {
	Consumed  int `json:"consumed"`
	Target    int `json:"target"`
	Remaining int `json:"remaining"`
}

type ProteinStats struct {
	Consumed int `json:"consumed"`
	Target   int `json:"target"`
}

type WaterStats struct {
	ConsumedML int `json:"consumed_ml"`
	TargetML   int `json:"target_ml"`
	Percentage int `json:"percentage"`
}

// Stats is today's snapshot for health-app widgets.
type Stats struct {
	Calories    CalorieStats `json:"calories"`
	Protein     ProteinStats `json:"protein"`
	Water       WaterStats   `json:"water"`
	MealsLogged int          `json:"meals_logged"`
}

func (s *Service) Stats(ctx context.Context, p *models.Profile) (*Stats, error) {
	today := s.Today()
	totals, err := s.store.DailyTotals(ctx, p.ID, today)
	if err != nil {
		return nil, err
	}
	water, err := s.store.DailyWater(ctx, p.ID, today)
	if err != nil {
		return nil, err
	}
	targets := p.Targets()
	waterTarget := nutrition.WaterTargetForProfile(p)
	var pct int
	if waterTarget > 0 {
		pct = int(math.Round(float64(water) / float64(waterTarget) * 100))
	}
	return &Stats{
		Calories: CalorieStats{
			Consumed:  totals.Calories,
			Target:    targets.Calories,
			Remaining: targets.Calories - totals.Calories,
		},
		Protein:     ProteinStats{Consumed: totals.Protein, Target: targets.ProteinG},
		Water:       WaterStats{ConsumedML: water, TargetML: waterTarget, Percentage: pct},
		MealsLogged: totals.MealsLogged,
	}, nil
}

// Estimate returns nutrition for a description without logging it. A nil
// profile uses the default provider.
func (s *Service) Estimate(ctx context.Context, p *models.Profile, text string) models.Nutrition {
	pl := s.planner
	if p != nil {
		pl = s.plannerFor(ctx, p)
	}
	return pl.ParseFoodLog(ctx, text)
}

// FoodsToAvoid pairs each of the user's restrictions with its food list.
func FoodsToAvoid(p *models.Profile) [][]string {
	foods := make([][]string, 0, len(p.Restrictions))
	for _, r := range p.Restrictions {
		foods = append(foods, catalog.FoodsToAvoid(r))
	}
	return foods
}
