package scheduler

import (
	"context"
	"fmt"

	"diet-agent/internal/format"
	"diet-agent/internal/models"
)

// forEachUser runs fn for every notifiable user. A failing or panicking
// user is logged and skipped. Returns the number of users fn succeeded for.
func (s *Scheduler) forEachUser(ctx context.Context, job string, fn func(ctx context.Context, p *models.Profile) error) int {
	users, err := s.coach.NotifiableUsers(ctx)
	if err != nil {
		s.log.Error("Failed to list users", "job", job, "error", err)
		return 0
	}
	ok := 0
	for _, p := range users {
		if ctx.Err() != nil {
			s.log.Warn("Job cancelled", "job", job, "error", ctx.Err())
			break
		}
		if err := s.runUser(ctx, p, fn); err != nil {
			s.log.Error("Job failed for user", "job", job, "user_id", p.ID, "error", err)
			continue
		}
		ok++
	}
	s.log.Info("Job finished", "job", job, "users", len(users), "succeeded", ok)
	return ok
}

func (s *Scheduler) runUser(ctx context.Context, p *models.Profile, fn func(ctx context.Context, p *models.Profile) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, p)
}

// SendMorningPlans sends today's plan, generating it when missing.
func (s *Scheduler) SendMorningPlans(ctx context.Context) {
	s.forEachUser(ctx, "morning_plans", func(ctx context.Context, p *models.Profile) error {
		plan, err := s.coach.TodayPlan(ctx, p)
		if err != nil {
			return err
		}
		return s.notifier.Send(ctx, p.TelegramID, format.MorningPlan(plan, p.Name))
	})
}

func (s *Scheduler) SendEveningSummaries(ctx context.Context) {
	s.forEachUser(ctx, "evening_summaries", func(ctx context.Context, p *models.Profile) error {
		dp, err := s.coach.DailyProgress(ctx, p)
		if err != nil {
			return err
		}
		return s.notifier.Send(ctx, p.TelegramID, format.EveningSummary(dp, p.Name))
	})
}

func (s *Scheduler) SendWeeklyReports(ctx context.Context) {
	s.forEachUser(ctx, "weekly_reports", func(ctx context.Context, p *models.Profile) error {
		report, err := s.coach.WeeklyReport(ctx, p)
		if err != nil {
			return err
		}
		return s.notifier.Send(ctx, p.TelegramID, "<b>Your Weekly Report</b>\n\n"+format.WeeklyReport(report))
	})
}

// SendMealReminders reminds users whose stored plan for today has the
// slot. Plans are not generated here.
func (s *Scheduler) SendMealReminders(ctx context.Context, slot string) {
	s.forEachUser(ctx, slot+"_reminders", func(ctx context.Context, p *models.Profile) error {
		plan, err := s.coach.StoredPlan(ctx, p)
		if err != nil || plan == nil {
			return err
		}
		var meal *models.Meal
		switch slot {
		case "breakfast":
			meal = plan.Breakfast
		case "lunch":
			meal = plan.Lunch
		case "dinner":
			meal = plan.Dinner
		}
		if meal == nil {
			return nil
		}
		return s.notifier.Send(ctx, p.TelegramID, format.MealReminder(slot, meal))
	})
}

// SendWaterReminders nudges users who enabled water reminders and are
// still below the daily amount.
func (s *Scheduler) SendWaterReminders(ctx context.Context) {
	s.forEachUser(ctx, "water_reminders", func(ctx context.Context, p *models.Profile) error {
		st, err := s.coach.Settings(ctx, p)
		if err != nil {
			return err
		}
		if !st.EnableWaterReminders {
			return nil
		}
		dp, err := s.coach.DailyProgress(ctx, p)
		if err != nil {
			return err
		}
		msg, ok := format.WaterReminder(dp.WaterML)
		if !ok {
			return nil
		}
		return s.notifier.Send(ctx, p.TelegramID, msg)
	})
}
