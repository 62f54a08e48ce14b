package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"diet-agent/internal/models"
)

const userColumns = `id, telegram_id, username, name, age, gender, height_cm, weight_kg,
        activity_level, goal_type, target_calories, target_protein, target_carbs, target_fat,
        restrictions, cuisine_preferences, meal_frequency, budget, created_at, updated_at`

// CreateUser inserts the user and its default settings. ID and
// timestamps are assigned here.
func (s *SQLiteStorage) CreateUser(ctx context.Context, p *models.Profile, settings models.Settings) error {
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.MealFrequency == 0 {
		p.MealFrequency = models.DefaultMealFrequency
	}
	if p.Budget == "" {
		p.Budget = models.BudgetModerate
	}
	restrictions, err := encodeList(p.Restrictions)
	if err != nil {
		return fmt.Errorf("failed to encode restrictions: %w", err)
	}
	cuisines, err := encodeList(p.CuisinePreferences)
	if err != nil {
		return fmt.Errorf("failed to encode cuisines: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TelegramID, p.Username, p.Name, p.Age, string(p.Gender), p.HeightCm, p.WeightKg,
		string(p.ActivityLevel), string(p.GoalType), p.TargetCalories, p.TargetProtein, p.TargetCarbs, p.TargetFat,
		restrictions, cuisines, p.MealFrequency, string(p.Budget), formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	settings.UserID = p.ID
	if err := upsertSettings(ctx, tx, &settings, now); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveProfile overwrites every profile field of an existing user.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, p *models.Profile) error {
	restrictions, err := encodeList(p.Restrictions)
	if err != nil {
		return fmt.Errorf("failed to encode restrictions: %w", err)
	}
	cuisines, err := encodeList(p.CuisinePreferences)
	if err != nil {
		return fmt.Errorf("failed to encode cuisines: %w", err)
	}
	p.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, `
        UPDATE users SET username = ?, name = ?, age = ?, gender = ?, height_cm = ?, weight_kg = ?,
            activity_level = ?, goal_type = ?, target_calories = ?, target_protein = ?, target_carbs = ?,
            target_fat = ?, restrictions = ?, cuisine_preferences = ?, meal_frequency = ?, budget = ?,
            updated_at = ?
        WHERE id = ?`,
		p.Username, p.Name, p.Age, string(p.Gender), p.HeightCm, p.WeightKg,
		string(p.ActivityLevel), string(p.GoalType), p.TargetCalories, p.TargetProtein, p.TargetCarbs,
		p.TargetFat, restrictions, cuisines, p.MealFrequency, string(p.Budget),
		formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *SQLiteStorage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("telegram user %d: %w", telegramID, ErrNotFound)
	}
	return p, err
}

// ListNotifiableUsers returns every user whose settings have
// notifications enabled.
func (s *SQLiteStorage) ListNotifiableUsers(ctx context.Context) ([]*models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT u.id, u.telegram_id, u.username, u.name, u.age, u.gender, u.height_cm, u.weight_kg,
            u.activity_level, u.goal_type, u.target_calories, u.target_protein, u.target_carbs, u.target_fat,
            u.restrictions, u.cuisine_preferences, u.meal_frequency, u.budget, u.created_at, u.updated_at
        FROM users u
        JOIN user_settings st ON st.user_id = u.id
        WHERE st.notifications_enabled = 1
        ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, p)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var gender, activity, goal, budget string
	var restrictions, cuisines, createdAt, updatedAt string
	err := row.Scan(
		&p.ID, &p.TelegramID, &p.Username, &p.Name, &p.Age, &gender, &p.HeightCm, &p.WeightKg,
		&activity, &goal, &p.TargetCalories, &p.TargetProtein, &p.TargetCarbs, &p.TargetFat,
		&restrictions, &cuisines, &p.MealFrequency, &budget, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	p.Gender = models.Gender(gender)
	p.ActivityLevel = models.ActivityLevel(activity)
	p.GoalType = models.GoalType(goal)
	p.Budget = models.Budget(budget)
	if p.Restrictions, err = decodeList(restrictions); err != nil {
		return nil, fmt.Errorf("failed to decode restrictions: %w", err)
	}
	if p.CuisinePreferences, err = decodeList(cuisines); err != nil {
		return nil, fmt.Errorf("failed to decode cuisines: %w", err)
	}
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return p, nil
}
