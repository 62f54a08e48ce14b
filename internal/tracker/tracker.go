// Package tracker turns logged food, water and weight into daily progress,
// weekly reports and coaching recommendations.
package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"diet-agent/internal/models"
)

// Store is the read side of the record store the tracker needs.
type Store interface {
	DailyTotals(ctx context.Context, userID string, day time.Time) (models.DailyTotals, error)
	DailyWater(ctx context.Context, userID string, day time.Time) (int, error)
	// WeightHistory returns the logs between from and to, inclusive,
	// newest first.
	WeightHistory(ctx context.Context, userID string, from, to time.Time) ([]models.WeightLog, error)
	// GetStreak returns a zero streak when the user has none yet.
	GetStreak(ctx context.Context, userID string, t models.StreakType) (models.Streak, error)
}

const (
	DefaultOnTrackTolerance = 0.15
	DefaultMinMealsLogged   = 2
	ReportDays              = 7
)

// Config holds the on-track thresholds.
type Config struct {
	OnTrackTolerance float64
	MinMealsLogged   int
}

func DefaultConfig() Config {
	return Config{OnTrackTolerance: DefaultOnTrackTolerance, MinMealsLogged: DefaultMinMealsLogged}
}

// OnTrack reports whether consumed calories are within the tolerance of
// target and enough meals were logged. A zero target counts as no
// deviation.
func (c Config) OnTrack(consumed, target, mealsLogged int) bool {
	var diff float64
	if target != 0 {
		diff = math.Abs(float64(consumed-target)) / float64(target)
	}
	return diff <= c.OnTrackTolerance && mealsLogged >= c.MinMealsLogged
}

type Tracker struct {
	store Store
	cfg   Config
}

// New returns a tracker. Non-positive thresholds take the defaults.
func New(store Store, cfg Config) *Tracker {
	if cfg.OnTrackTolerance <= 0 {
		cfg.OnTrackTolerance = DefaultOnTrackTolerance
	}
	if cfg.MinMealsLogged <= 0 {
		cfg.MinMealsLogged = DefaultMinMealsLogged
	}
	return &Tracker{store: store, cfg: cfg}
}

func (t *Tracker) Config() Config { return t.cfg }

func (t *Tracker) DailyProgress(ctx context.Context, p *models.Profile, day time.Time) (models.DailyProgress, error) {
	totals, err := t.store.DailyTotals(ctx, p.ID, day)
	if err != nil {
		return models.DailyProgress{}, fmt.Errorf("daily totals: %w", err)
	}
	water, err := t.store.DailyWater(ctx, p.ID, day)
	if err != nil {
		return models.DailyProgress{}, fmt.Errorf("daily water: %w", err)
	}
	targets := p.Targets()
	return models.DailyProgress{
		Date:             models.DateKey(day),
		CaloriesConsumed: totals.Calories,
		CaloriesTarget:   targets.Calories,
		ProteinConsumed:  totals.Protein,
		ProteinTarget:    targets.ProteinG,
		CarbsConsumed:    totals.Carbs,
		CarbsTarget:      targets.CarbsG,
		FatConsumed:      totals.Fat,
		FatTarget:        targets.FatG,
		WaterML:          water,
		MealsLogged:      totals.MealsLogged,
		OnTrack:          t.cfg.OnTrack(totals.Calories, targets.Calories, totals.MealsLogged),
	}, nil
}

// WeeklyReport covers the seven days ending on end, inclusive. Averages
// divide by seven whether or not a day has logs.
func (t *Tracker) WeeklyReport(ctx context.Context, p *models.Profile, end time.Time) (*models.WeeklyReport, error) {
	end = models.StartOfDay(end)
	start := end.AddDate(0, 0, -(ReportDays - 1))

	report := &models.WeeklyReport{
		StartDate: models.DateKey(start),
		EndDate:   models.DateKey(end),
		Days:      make([]models.DailyProgress, 0, ReportDays),
		TotalDays: ReportDays,
	}
	var calories, protein, carbs, fat, water int
	for i := 0; i < ReportDays; i++ {
		dp, err := t.DailyProgress(ctx, p, start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		report.Days = append(report.Days, dp)
		calories += dp.CaloriesConsumed
		protein += dp.ProteinConsumed
		carbs += dp.CarbsConsumed
		fat += dp.FatConsumed
		water += dp.WaterML
		if dp.OnTrack {
			report.DaysOnTrack++
		}
	}
	report.AvgCalories = float64(calories) / ReportDays
	report.AvgProtein = float64(protein) / ReportDays
	report.AvgCarbs = float64(carbs) / ReportDays
	report.AvgFat = float64(fat) / ReportDays
	report.AvgWaterML = float64(water) / ReportDays

	history, err := t.store.WeightHistory(ctx, p.ID, start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("weight history: %w", err)
	}
	report.WeightChange = WeightChange(history)

	streak, err := t.store.GetStreak(ctx, p.ID, models.StreakLogging)
	if err != nil {
		return nil, fmt.Errorf("logging streak: %w", err)
	}
	report.LoggingStreak = streak.Current

	report.Recommendations = Recommend(p, report)
	return report, nil
}

// WeightChange is newest minus oldest for a newest-first history, so a
// loss is negative. Nil with fewer than two entries.
func WeightChange(history []models.WeightLog) *float64 {
	if len(history) < 2 {
		return nil
	}
	change := history[0].WeightKg - history[len(history)-1].WeightKg
	return &change
}
