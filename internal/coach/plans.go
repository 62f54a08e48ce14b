package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diet-agent/internal/models"
	"diet-agent/internal/storage"
)

// TodayPlan returns today's plan, generating it on first request.
func (s *Service) TodayPlan(ctx context.Context, p *models.Profile) (*models.MealPlan, error) {
	return s.EnsurePlan(ctx, p, s.Today(), false)
}

// RegeneratePlan replaces today's plan with a fresh one.
func (s *Service) RegeneratePlan(ctx context.Context, p *models.Profile) (*models.MealPlan, error) {
	return s.EnsurePlan(ctx, p, s.Today(), true)
}

// EnsurePlan returns the stored plan for day unless force is set or none
// exists, in which case a new plan is generated and upserted. Main-meal
// names from the preceding week's plans are passed on to avoid repeats.
func (s *Service) EnsurePlan(ctx context.Context, p *models.Profile, day time.Time, force bool) (*models.MealPlan, error) {
	day = models.StartOfDay(day.In(s.loc))
	if !force {
		plan, err := s.store.GetMealPlan(ctx, p.ID, day)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	recent, err := s.recentMealNames(ctx, p, day)
	if err != nil {
		return nil, err
	}
	data := s.plannerFor(ctx, p).GenerateMealPlan(ctx, p, recent)
	plan := models.NewMealPlan(p.ID, day, *data)
	if err := plan.Verify(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertMealPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	s.log.Debug("Meal plan generated", "user_id", p.ID, "date", plan.PlanDate, "calories", plan.TotalCalories)
	return plan, nil
}

func (s *Service) recentMealNames(ctx context.Context, p *models.Profile, day time.Time) ([]string, error) {
	plans, err := s.store.RecentMealPlans(ctx, p.ID, day.AddDate(0, 0, -recentPlanDays))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, plan := range plans {
		if plan.PlanDate == models.DateKey(day) {
			continue
		}
		names = append(names, plan.MealNames()...)
	}
	return names, nil
}

// StoredPlan returns today's plan without generating one. Nil when none
// exists yet.
func (s *Service) StoredPlan(ctx context.Context, p *models.Profile) (*models.MealPlan, error) {
	plan, err := s.store.GetMealPlan(ctx, p.ID, s.Today())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}
