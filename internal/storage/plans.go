package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diet-agent/internal/models"
)

// UpsertMealPlan stores the plan for its (user, date), replacing any plan
// already there. The plan keeps the ID of the row it replaced.
func (s *SQLiteStorage) UpsertMealPlan(ctx context.Context, plan *models.MealPlan) error {
	meals, err := json.Marshal(plan.PlanData)
	if err != nil {
		return fmt.Errorf("failed to encode meals: %w", err)
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.CreatedAt = s.now()

	err = s.db.QueryRowContext(ctx, `
        INSERT INTO meal_plans (id, user_id, plan_date, meals, total_calories, total_protein,
            total_carbs, total_fat, estimated_cost, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id, plan_date) DO UPDATE SET
            meals = excluded.meals,
            total_calories = excluded.total_calories,
            total_protein = excluded.total_protein,
            total_carbs = excluded.total_carbs,
            total_fat = excluded.total_fat,
            estimated_cost = excluded.estimated_cost,
            created_at = excluded.created_at
        RETURNING id`,
		plan.ID, plan.UserID, plan.PlanDate, string(meals), plan.TotalCalories, plan.TotalProtein,
		plan.TotalCarbs, plan.TotalFat, plan.EstimatedCost, formatTime(plan.CreatedAt)).Scan(&plan.ID)
	if err != nil {
		return fmt.Errorf("failed to save meal plan: %w", err)
	}
	return nil
}

const planColumns = `id, user_id, plan_date, meals, total_calories, total_protein, total_carbs,
        total_fat, estimated_cost, created_at`

func (s *SQLiteStorage) GetMealPlan(ctx context.Context, userID string, day time.Time) (*models.MealPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM meal_plans
        WHERE user_id = ? AND plan_date = ?`, userID, models.DateKey(day))
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meal plan %s: %w", models.DateKey(day), ErrNotFound)
	}
	return plan, err
}

// RecentMealPlans returns plans dated on or after since, newest first.
func (s *SQLiteStorage) RecentMealPlans(ctx context.Context, userID string, since time.Time) ([]*models.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+planColumns+` FROM meal_plans
        WHERE user_id = ? AND plan_date >= ?
        ORDER BY plan_date DESC`, userID, models.DateKey(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query meal plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func scanPlan(row scanner) (*models.MealPlan, error) {
	plan := &models.MealPlan{}
	var meals, createdAt string
	err := row.Scan(&plan.ID, &plan.UserID, &plan.PlanDate, &meals, &plan.TotalCalories,
		&plan.TotalProtein, &plan.TotalCarbs, &plan.TotalFat, &plan.EstimatedCost, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan meal plan: %w", err)
	}
	if err := json.Unmarshal([]byte(meals), &plan.PlanData); err != nil {
		return nil, fmt.Errorf("failed to decode meals: %w", err)
	}
	if plan.Snacks == nil {
		plan.Snacks = []models.Meal{}
	}
	if plan.ShoppingList == nil {
		plan.ShoppingList = []models.ShoppingItem{}
	}
	if plan.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return plan, nil
}
