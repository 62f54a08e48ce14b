package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diet-agent/internal/models"
)

// Log rows carry the calendar date of LoggedAt in the location it was
// given in; day queries match on that date.

func (s *SQLiteStorage) AddFoodLog(ctx context.Context, l *models.FoodLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = s.now()
	}
	if l.MealType == "" {
		l.MealType = models.MealOther
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO food_logs (id, user_id, logged_at, log_date, meal_type, food_description,
            portion_size, calories, protein, carbs, fat, notes, source)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, formatTime(l.LoggedAt), models.DateKey(l.LoggedAt), string(l.MealType),
		l.Description, l.PortionSize, l.Calories, l.Protein, l.Carbs, l.Fat, l.Notes, l.Source)
	if err != nil {
		return fmt.Errorf("failed to insert food log: %w", err)
	}
	return nil
}

// FoodLogsForDate returns the day's food logs, oldest first.
func (s *SQLiteStorage) FoodLogsForDate(ctx context.Context, userID string, day time.Time) ([]models.FoodLog, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, logged_at, meal_type, food_description, portion_size, calories, protein,
            carbs, fat, notes, source
        FROM food_logs WHERE user_id = ? AND log_date = ?
        ORDER BY logged_at`, userID, models.DateKey(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query food logs: %w", err)
	}
	defer rows.Close()

	var logs []models.FoodLog
	for rows.Next() {
		l := models.FoodLog{UserID: userID}
		var loggedAt, mealType string
		if err := rows.Scan(&l.ID, &loggedAt, &mealType, &l.Description, &l.PortionSize,
			&l.Calories, &l.Protein, &l.Carbs, &l.Fat, &l.Notes, &l.Source); err != nil {
			return nil, fmt.Errorf("failed to scan food log: %w", err)
		}
		l.MealType = models.MealType(mealType)
		if l.LoggedAt, err = parseTime("logged_at", loggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DailyTotals sums the day's food logs. MealsLogged is the number of logs.
func (s *SQLiteStorage) DailyTotals(ctx context.Context, userID string, day time.Time) (models.DailyTotals, error) {
	var t models.DailyTotals
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0), COALESCE(SUM(carbs), 0),
            COALESCE(SUM(fat), 0), COUNT(*)
        FROM food_logs WHERE user_id = ? AND log_date = ?`, userID, models.DateKey(day)).Scan(
		&t.Calories, &t.Protein, &t.Carbs, &t.Fat, &t.MealsLogged)
	if err != nil {
		return t, fmt.Errorf("failed to sum food logs: %w", err)
	}
	return t, nil
}

func (s *SQLiteStorage) AddWaterLog(ctx context.Context, l *models.WaterLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO water_logs (id, user_id, logged_at, log_date, amount_ml)
        VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.UserID, formatTime(l.LoggedAt), models.DateKey(l.LoggedAt), l.AmountML)
	if err != nil {
		return fmt.Errorf("failed to insert water log: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DailyWater(ctx context.Context, userID string, day time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(amount_ml), 0) FROM water_logs
        WHERE user_id = ? AND log_date = ?`, userID, models.DateKey(day)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum water logs: %w", err)
	}
	return total, nil
}

func (s *SQLiteStorage) AddWeightLog(ctx context.Context, l *models.WeightLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO weight_logs (id, user_id, logged_at, log_date, weight_kg, notes)
        VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, formatTime(l.LoggedAt), models.DateKey(l.LoggedAt), l.WeightKg, l.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert weight log: %w", err)
	}
	return nil
}

// LatestWeight returns the most recent weigh-in by logged_at, or
// ErrNotFound when the user has none.
func (s *SQLiteStorage) LatestWeight(ctx context.Context, userID string) (*models.WeightLog, error) {
	l := &models.WeightLog{UserID: userID}
	var loggedAt string
	err := s.db.QueryRowContext(ctx, `
        SELECT id, logged_at, weight_kg, notes FROM weight_logs
        WHERE user_id = ?
        ORDER BY logged_at DESC, rowid DESC LIMIT 1`, userID).Scan(&l.ID, &loggedAt, &l.WeightKg, &l.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("weight logs for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest weight: %w", err)
	}
	if l.LoggedAt, err = parseTime("logged_at", loggedAt); err != nil {
		return nil, err
	}
	return l, nil
}

// WeightHistory returns logs dated from..to inclusive, newest first.
func (s *SQLiteStorage) WeightHistory(ctx context.Context, userID string, from, to time.Time) ([]models.WeightLog, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, logged_at, weight_kg, notes FROM weight_logs
        WHERE user_id = ? AND log_date >= ? AND log_date <= ?
        ORDER BY logged_at DESC`, userID, models.DateKey(from), models.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query weight logs: %w", err)
	}
	defer rows.Close()

	var logs []models.WeightLog
	for rows.Next() {
		l := models.WeightLog{UserID: userID}
		var loggedAt string
		if err := rows.Scan(&l.ID, &loggedAt, &l.WeightKg, &l.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan weight log: %w", err)
		}
		if l.LoggedAt, err = parseTime("logged_at", loggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
