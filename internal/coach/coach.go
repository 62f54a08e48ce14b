// Package coach is the application layer shared by the chat tools, the
// health-sync API and the scheduler. It owns the clock and timezone; every
// day boundary is computed in the configured location.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diet-agent/internal/logger"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
	"diet-agent/internal/planner"
	"diet-agent/internal/storage"
	"diet-agent/internal/tracker"
)

// Store is the record store the coach works against.
type Store interface {
	tracker.Store

	CreateUser(ctx context.Context, p *models.Profile, settings models.Settings) error
	GetUser(ctx context.Context, id string) (*models.Profile, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error
	GetSettings(ctx context.Context, userID string) (models.Settings, error)
	UpdateSettings(ctx context.Context, st *models.Settings) error
	ListNotifiableUsers(ctx context.Context) ([]*models.Profile, error)

	UpsertMealPlan(ctx context.Context, plan *models.MealPlan) error
	GetMealPlan(ctx context.Context, userID string, day time.Time) (*models.MealPlan, error)
	RecentMealPlans(ctx context.Context, userID string, since time.Time) ([]*models.MealPlan, error)

	AddFoodLog(ctx context.Context, l *models.FoodLog) error
	FoodLogsForDate(ctx context.Context, userID string, day time.Time) ([]models.FoodLog, error)
	AddWaterLog(ctx context.Context, l *models.WaterLog) error
	AddWeightLog(ctx context.Context, l *models.WeightLog) error
	LatestWeight(ctx context.Context, userID string) (*models.WeightLog, error)
	UpdateStreak(ctx context.Context, userID string, t models.StreakType, day time.Time) (models.Streak, error)
}

var (
	ErrNotRegistered   = errors.New("user not registered")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUnknownPreset   = errors.New("unknown quick-log item")
)

// recentPlanDays is how far back plan meal names are avoided.
const recentPlanDays = 7

type Service struct {
	store   Store
	planner *planner.Planner
	tracker *tracker.Tracker
	loc     *time.Location
	now     func() time.Time
	log     *logger.Logger
}

func New(store Store, p *planner.Planner, cfg tracker.Config, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	if p == nil {
		p = planner.New(nil, nil, 0, log)
	}
	return &Service{
		store:   store,
		planner: p,
		tracker: tracker.New(store, cfg),
		loc:     loc,
		now:     time.Now,
		log:     log,
	}
}

// Now is the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Today() time.Time {
	return models.StartOfDay(s.Now())
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Tracker() *tracker.Tracker { return s.tracker }

// localTime places an optional client timestamp in the service location,
// defaulting to now.
func (s *Service) localTime(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.Now()
	}
	return t.In(s.loc)
}

// Register returns the user for telegramID, creating it with default
// settings on first contact. The second result reports creation.
func (s *Service) Register(ctx context.Context, telegramID int64, username, name string) (*models.Profile, bool, error) {
	p, err := s.store.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	p = &models.Profile{TelegramID: telegramID, Username: username, Name: name}
	settings := models.DefaultSettings("")
	settings.AIProvider = s.planner.ProviderName()
	settings.Timezone = s.loc.String()
	if err := s.store.CreateUser(ctx, p, settings); err != nil {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}
	s.log.Info("User registered", "user_id", p.ID, "telegram_id", telegramID)
	return p, true, nil
}

// User looks up a registered user by chat id.
func (s *Service) User(ctx context.Context, telegramID int64) (*models.Profile, error) {
	p, err := s.store.GetUserByTelegramID(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotRegistered, telegramID)
	}
	return p, err
}

// UpdateProfile validates and applies upd. A calorie target given without
// macros gets macros split from it by the goal's ratios. Targets are
// recomputed when the update changes a formula input, no explicit target
// was given and the body metrics are complete; this replaces any custom
// calorie target set earlier. A new weight is also appended to the weight
// log.
func (s *Service) UpdateProfile(ctx context.Context, telegramID int64, upd models.ProfileUpdate) (*models.Profile, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	p, err := s.User(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	upd.Apply(p)

	macrosGiven := upd.TargetProtein != nil || upd.TargetCarbs != nil || upd.TargetFat != nil
	if upd.TargetCalories != nil && !macrosGiven {
		p.SetTargets(nutrition.MacrosFor(*upd.TargetCalories, p.GoalType))
	}

	explicitTargets := upd.TargetCalories != nil || upd.TargetProtein != nil || upd.TargetCarbs != nil || upd.TargetFat != nil
	if upd.ChangesBodyMetrics() && !explicitTargets && p.HasBodyMetrics() {
		targets, err := nutrition.TargetsForProfile(p)
		if err != nil {
			return nil, err
		}
		p.SetTargets(targets)
	}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, err
	}

	if upd.WeightKg != nil {
		l := &models.WeightLog{UserID: p.ID, LoggedAt: s.Now(), WeightKg: *upd.WeightKg}
		if err := s.store.AddWeightLog(ctx, l); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecalculateTargets recomputes and stores targets from the profile.
func (s *Service) RecalculateTargets(ctx context.Context, telegramID int64) (models.NutritionTargets, error) {
	p, err := s.User(ctx, telegramID)
	if err != nil {
		return models.NutritionTargets{}, err
	}
	targets, err := nutrition.TargetsForProfile(p)
	if err != nil {
		return models.NutritionTargets{}, err
	}
	p.SetTargets(targets)
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return models.NutritionTargets{}, err
	}
	return targets, nil
}

func (s *Service) Settings(ctx context.Context, p *models.Profile) (models.Settings, error) {
	return s.store.GetSettings(ctx, p.ID)
}

// SettingsUpdate carries a partial settings change. Nil fields are kept.
type SettingsUpdate struct {
	AIProvider            *string  `json:"ai_provider,omitempty"`
	MorningPlanTime       *string  `json:"morning_plan_time,omitempty"`
	EveningSummaryTime    *string  `json:"evening_summary_time,omitempty"`
	MealReminderTimes     []string `json:"meal_reminder_times,omitempty"`
	EnableWaterReminders  *bool    `json:"enable_water_reminders,omitempty"`
	WaterReminderInterval *int     `json:"water_reminder_interval,omitempty"`
	NotificationsEnabled  *bool    `json:"notifications_enabled,omitempty"`
	Timezone              *string  `json:"timezone,omitempty"`
}

var knownProviders = []string{
	planner.ProviderRuleBased, planner.ProviderOllama, planner.ProviderGroq,
	planner.ProviderGemini, planner.ProviderOpenRouter,
}

func validClock(v string) error {
	if _, err := time.Parse("15:04", v); err != nil {
		return fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSettings, v)
	}
	return nil
}

func (u *SettingsUpdate) Validate() error {
	if u.AIProvider != nil {
		ok := false
		for _, name := range knownProviders {
			ok = ok || name == *u.AIProvider
		}
		if !ok {
			return fmt.Errorf("%w: unknown ai_provider %q", ErrInvalidSettings, *u.AIProvider)
		}
	}
	for _, v := range []*string{u.MorningPlanTime, u.EveningSummaryTime} {
		if v != nil {
			if err := validClock(*v); err != nil {
				return err
			}
		}
	}
	for _, v := range u.MealReminderTimes {
		if err := validClock(v); err != nil {
			return err
		}
	}
	if u.WaterReminderInterval != nil && (*u.WaterReminderInterval < 1 || *u.WaterReminderInterval > 12) {
		return fmt.Errorf("%w: water_reminder_interval must be between 1 and 12 hours", ErrInvalidSettings)
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q", ErrInvalidSettings, *u.Timezone)
		}
	}
	return nil
}

func (s *Service) UpdateSettings(ctx context.Context, p *models.Profile, u SettingsUpdate) (models.Settings, error) {
	if err := u.Validate(); err != nil {
		return models.Settings{}, err
	}
	st, err := s.store.GetSettings(ctx, p.ID)
	if err != nil {
		return models.Settings{}, err
	}
	if u.AIProvider != nil {
		st.AIProvider = *u.AIProvider
	}
	if u.MorningPlanTime != nil {
		st.MorningPlanTime = *u.MorningPlanTime
	}
	if u.EveningSummaryTime != nil {
		st.EveningSummaryTime = *u.EveningSummaryTime
	}
	if u.MealReminderTimes != nil {
		st.MealReminderTimes = u.MealReminderTimes
	}
	if u.EnableWaterReminders != nil {
		st.EnableWaterReminders = *u.EnableWaterReminders
	}
	if u.WaterReminderInterval != nil {
		st.WaterReminderInterval = *u.WaterReminderInterval
	}
	if u.NotificationsEnabled != nil {
		st.NotificationsEnabled = *u.NotificationsEnabled
	}
	if u.Timezone != nil {
		st.Timezone = *u.Timezone
	}
	if err := s.store.UpdateSettings(ctx, &st); err != nil {
		return models.Settings{}, err
	}
	return st, nil
}

// NotifiableUsers lists users with notifications enabled.
func (s *Service) NotifiableUsers(ctx context.Context) ([]*models.Profile, error) {
	return s.store.ListNotifiableUsers(ctx)
}

// plannerFor honors the user's provider choice.
func (s *Service) plannerFor(ctx context.Context, p *models.Profile) *planner.Planner {
	st, err := s.store.GetSettings(ctx, p.ID)
	if err != nil {
		s.log.Debug("No settings for user, using default planner", "user_id", p.ID, "error", err)
		return s.planner
	}
	return s.planner.With(st.AIProvider)
}
