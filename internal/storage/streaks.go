package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"diet-agent/internal/models"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getStreak(ctx context.Context, db queryRower, userID string, t models.StreakType) (models.Streak, error) {
	st := models.Streak{UserID: userID, Type: t}
	err := db.QueryRowContext(ctx, `
        SELECT current_streak, longest_streak, last_activity_date FROM streaks
        WHERE user_id = ? AND streak_type = ?`, userID, string(t)).Scan(
		&st.Current, &st.Longest, &st.LastActivityDate)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to get streak: %w", err)
	}
	return st, nil
}

// GetStreak returns a zero streak when the user has none of that type.
func (s *SQLiteStorage) GetStreak(ctx context.Context, userID string, t models.StreakType) (models.Streak, error) {
	return getStreak(ctx, s.db, userID, t)
}

// UpdateStreak records activity of type t on day and returns the
// resulting streak.
func (s *SQLiteStorage) UpdateStreak(ctx context.Context, userID string, t models.StreakType, day time.Time) (models.Streak, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Streak{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getStreak(ctx, tx, userID, t)
	if err != nil {
		return models.Streak{}, err
	}
	next, changed := current.Advance(day)
	if !changed {
		return current, nil
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO streaks (user_id, streak_type, current_streak, longest_streak, last_activity_date)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(user_id, streak_type) DO UPDATE SET
            current_streak = excluded.current_streak,
            longest_streak = excluded.longest_streak,
            last_activity_date = excluded.last_activity_date`,
		userID, string(t), next.Current, next.Longest, next.LastActivityDate)
	if err != nil {
		return models.Streak{}, fmt.Errorf("failed to save streak: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Streak{}, fmt.Errorf("failed to commit streak: %w", err)
	}
	return next, nil
}
