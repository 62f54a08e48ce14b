package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"diet-agent/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertSettings(ctx context.Context, db execer, st *models.Settings, now time.Time) error {
	times, err := encodeList(st.MealReminderTimes)
	if err != nil {
		return fmt.Errorf("failed to encode reminder times: %w", err)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now

	_, err = db.ExecContext(ctx, `
        INSERT INTO user_settings (user_id, ai_provider, morning_plan_time, evening_summary_time,
            meal_reminder_times, enable_water_reminders, water_reminder_interval,
            notifications_enabled, timezone, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            ai_provider = excluded.ai_provider,
            morning_plan_time = excluded.morning_plan_time,
            evening_summary_time = excluded.evening_summary_time,
            meal_reminder_times = excluded.meal_reminder_times,
            enable_water_reminders = excluded.enable_water_reminders,
            water_reminder_interval = excluded.water_reminder_interval,
            notifications_enabled = excluded.notifications_enabled,
            timezone = excluded.timezone,
            updated_at = excluded.updated_at`,
		st.UserID, st.AIProvider, st.MorningPlanTime, st.EveningSummaryTime,
		times, boolInt(st.EnableWaterReminders), st.WaterReminderInterval,
		boolInt(st.NotificationsEnabled), st.Timezone, formatTime(st.CreatedAt), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetSettings(ctx context.Context, userID string) (models.Settings, error) {
	st := models.Settings{UserID: userID}
	var times, createdAt, updatedAt string
	var water, notif int
	err := s.db.QueryRowContext(ctx, `
        SELECT ai_provider, morning_plan_time, evening_summary_time, meal_reminder_times,
            enable_water_reminders, water_reminder_interval, notifications_enabled, timezone,
            created_at, updated_at
        FROM user_settings WHERE user_id = ?`, userID).Scan(
		&st.AIProvider, &st.MorningPlanTime, &st.EveningSummaryTime, &times,
		&water, &st.WaterReminderInterval, &notif, &st.Timezone, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("settings for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return st, fmt.Errorf("failed to get settings: %w", err)
	}
	st.EnableWaterReminders = water == 1
	st.NotificationsEnabled = notif == 1
	if st.MealReminderTimes, err = decodeList(times); err != nil {
		return st, fmt.Errorf("failed to decode reminder times: %w", err)
	}
	if st.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return st, err
	}
	if st.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return st, err
	}
	return st, nil
}

// UpdateSettings replaces the user's settings row.
func (s *SQLiteStorage) UpdateSettings(ctx context.Context, st *models.Settings) error {
	if _, err := s.GetUser(ctx, st.UserID); err != nil {
		return err
	}
	return upsertSettings(ctx, s.db, st, s.now())
}
