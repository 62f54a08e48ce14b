// Package scheduler runs the periodic notification jobs: morning plans,
// evening summaries, weekly reports, meal reminders and water reminders.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"

	"diet-agent/internal/config"
	"diet-agent/internal/logger"
	"diet-agent/internal/models"
	"diet-agent/internal/notify"
)

// Coach is the part of the application layer the jobs use.
type Coach interface {
	NotifiableUsers(ctx context.Context) ([]*models.Profile, error)
	Settings(ctx context.Context, p *models.Profile) (models.Settings, error)
	TodayPlan(ctx context.Context, p *models.Profile) (*models.MealPlan, error)
	StoredPlan(ctx context.Context, p *models.Profile) (*models.MealPlan, error)
	DailyProgress(ctx context.Context, p *models.Profile) (models.DailyProgress, error)
	WeeklyReport(ctx context.Context, p *models.Profile) (*models.WeeklyReport, error)
}

// Config holds the wall-clock times, as HH:MM, in the scheduler location.
type Config struct {
	MorningPlanTime       string
	EveningSummaryTime    string
	WeeklyReportTime      string
	MealReminderTimes     []string
	EnableWaterReminders  bool
	WaterReminderInterval int
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MorningPlanTime:       cfg.MorningPlanTime,
		EveningSummaryTime:    cfg.EveningSummaryTime,
		WeeklyReportTime:      cfg.WeeklyReportTime,
		MealReminderTimes:     cfg.MealReminderTimes,
		EnableWaterReminders:  cfg.EnableWaterReminders,
		WaterReminderInterval: cfg.WaterReminderInterval,
	}
}

// reminderSlots maps MealReminderTimes positions to plan slots.
var reminderSlots = []string{"breakfast", "lunch", "dinner"}

type Scheduler struct {
	coach    Coach
	notifier notify.Notifier
	cfg      Config
	cron     *cron.Cron
	log      *logger.Logger
	timeout  time.Duration
}

func New(c Coach, n notify.Notifier, cfg Config, loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		coach:    c,
		notifier: n,
		cfg:      cfg,
		cron:     cron.NewWithLocation(loc),
		log:      log.With("component", "scheduler"),
		timeout:  10 * time.Minute,
	}
}

// dailySpec turns HH:MM into a six-field cron spec, optionally limited to
// a day of week.
func dailySpec(hhmm, dow string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return fmt.Sprintf("0 %d %d * * %s", t.Minute(), t.Hour(), dow), nil
}

func waterSpec(interval int) string {
	if interval < 1 {
		interval = 2
	}
	return fmt.Sprintf("0 30 8-20/%d * * *", interval)
}

func (s *Scheduler) add(spec, job string, run func(ctx context.Context)) error {
	err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.log.Info("Running job", "job", job)
		run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job, err)
	}
	s.log.Debug("Job scheduled", "job", job, "spec", spec)
	return nil
}

// Register adds every job to the cron table. Water reminders are only
// scheduled when enabled in the configuration.
func (s *Scheduler) Register() error {
	morning, err := dailySpec(s.cfg.MorningPlanTime, "*")
	if err != nil {
		return err
	}
	if err := s.add(morning, "morning_plans", s.SendMorningPlans); err != nil {
		return err
	}

	evening, err := dailySpec(s.cfg.EveningSummaryTime, "*")
	if err != nil {
		return err
	}
	if err := s.add(evening, "evening_summaries", s.SendEveningSummaries); err != nil {
		return err
	}

	weekly, err := dailySpec(s.cfg.WeeklyReportTime, "0")
	if err != nil {
		return err
	}
	if err := s.add(weekly, "weekly_reports", s.SendWeeklyReports); err != nil {
		return err
	}

	for i, at := range s.cfg.MealReminderTimes {
		if i >= len(reminderSlots) {
			break
		}
		slot := reminderSlots[i]
		spec, err := dailySpec(at, "*")
		if err != nil {
			return err
		}
		if err := s.add(spec, slot+"_reminders", func(ctx context.Context) { s.SendMealReminders(ctx, slot) }); err != nil {
			return err
		}
	}

	if s.cfg.EnableWaterReminders {
		if err := s.add(waterSpec(s.cfg.WaterReminderInterval), "water_reminders", s.SendWaterReminders); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("Scheduler started", "jobs", len(s.cron.Entries()))
	<-ctx.Done()
	s.cron.Stop()
	s.log.Info("Scheduler stopped")
	return nil
}
