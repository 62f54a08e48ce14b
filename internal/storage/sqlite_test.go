package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diet-agent/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "diet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *SQLiteStorage, telegramID int64) *models.Profile {
	t.Helper()
	p := &models.Profile{
		TelegramID:   telegramID,
		Name:         "Sam",
		WeightKg:     80,
		Restrictions: []string{"vegetarian"},
	}
	require.NoError(t, s.CreateUser(context.Background(), p, models.DefaultSettings("")))
	return p
}

func at(day string, hour int) time.Time {
	d, _ := time.Parse("2006-01-02", day)
	return d.Add(time.Duration(hour) * time.Hour)
}

func TestUsers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 42)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, models.DefaultMealFrequency, p.MealFrequency)

	got, err := s.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, []string{"vegetarian"}, got.Restrictions)
	assert.Equal(t, []string{}, got.CuisinePreferences)
	assert.Equal(t, models.BudgetModerate, got.Budget)

	got.GoalType = models.GoalWeightLoss
	got.TargetCalories = 1800
	require.NoError(t, s.SaveProfile(ctx, got))
	again, err := s.GetUser(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalWeightLoss, again.GoalType)
	assert.Equal(t, 1800, again.TargetCalories)

	_, err = s.GetUserByTelegramID(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SaveProfile(ctx, &models.Profile{ID: "missing"}), ErrNotFound)

	dup := &models.Profile{TelegramID: 42}
	assert.Error(t, s.CreateUser(ctx, dup, models.DefaultSettings("")))
}

func TestSettings(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)
	quiet := createUser(t, s, 2)

	st, err := s.GetSettings(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "07:00", st.MorningPlanTime)
	assert.Equal(t, []string{"08:00", "12:00", "18:00"}, st.MealReminderTimes)
	assert.True(t, st.NotificationsEnabled)

	qs, err := s.GetSettings(ctx, quiet.ID)
	require.NoError(t, err)
	qs.NotificationsEnabled = false
	qs.EnableWaterReminders = true
	require.NoError(t, s.UpdateSettings(ctx, &qs))

	qs2, err := s.GetSettings(ctx, quiet.ID)
	require.NoError(t, err)
	assert.False(t, qs2.NotificationsEnabled)
	assert.True(t, qs2.EnableWaterReminders)

	users, err := s.ListNotifiableUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, p.ID, users[0].ID)

	_, err = s.GetSettings(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateSettings(ctx, &models.Settings{UserID: "missing"}), ErrNotFound)
}

func TestMealPlans(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)

	first := models.NewMealPlan(p.ID, at("2024-03-04", 0), models.PlanData{
		Breakfast: &models.Meal{Name: "Oatmeal", Calories: 300, Protein: 10, Carbs: 50, Fat: 6},
	})
	require.NoError(t, s.UpsertMealPlan(ctx, first))

	replaced := models.NewMealPlan(p.ID, at("2024-03-04", 0), models.PlanData{
		Lunch: &models.Meal{Name: "Dal", Calories: 450, Protein: 20, Carbs: 60, Fat: 10},
	})
	require.NoError(t, s.UpsertMealPlan(ctx, replaced))
	assert.Equal(t, first.ID, replaced.ID)

	got, err := s.GetMealPlan(ctx, p.ID, at("2024-03-04", 9))
	require.NoError(t, err)
	assert.Nil(t, got.Breakfast)
	require.NotNil(t, got.Lunch)
	assert.Equal(t, "Dal", got.Lunch.Name)
	assert.Equal(t, 450, got.TotalCalories)
	assert.NoError(t, got.Verify())

	older := models.NewMealPlan(p.ID, at("2024-02-20", 0), models.PlanData{})
	require.NoError(t, s.UpsertMealPlan(ctx, older))
	mid := models.NewMealPlan(p.ID, at("2024-03-01", 0), models.PlanData{})
	require.NoError(t, s.UpsertMealPlan(ctx, mid))

	recent, err := s.RecentMealPlans(ctx, p.ID, at("2024-02-26", 0))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-03-04", recent[0].PlanDate)
	assert.Equal(t, "2024-03-01", recent[1].PlanDate)

	_, err = s.GetMealPlan(ctx, p.ID, at("2024-03-05", 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFoodAndWaterTotals(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)

	for _, l := range []models.FoodLog{
		{UserID: p.ID, LoggedAt: at("2024-03-04", 8), MealType: models.MealBreakfast, Description: "eggs",
			Nutrition: models.Nutrition{Calories: 156, Protein: 12, Carbs: 2, Fat: 10}, Source: models.SourceQuick},
		{UserID: p.ID, LoggedAt: at("2024-03-04", 13), MealType: models.MealLunch, Description: "rice",
			Nutrition: models.Nutrition{Calories: 200, Protein: 4, Carbs: 45}, Source: models.SourceQuick},
		{UserID: p.ID, LoggedAt: at("2024-03-05", 8), Description: "apple",
			Nutrition: models.Nutrition{Calories: 95, Carbs: 25}, Source: models.SourceManual},
	} {
		l := l
		require.NoError(t, s.AddFoodLog(ctx, &l))
	}

	totals, err := s.DailyTotals(ctx, p.ID, at("2024-03-04", 0))
	require.NoError(t, err)
	assert.Equal(t, models.DailyTotals{Nutrition: models.Nutrition{Calories: 356, Protein: 16, Carbs: 47, Fat: 10}, MealsLogged: 2}, totals)

	empty, err := s.DailyTotals(ctx, p.ID, at("2024-03-06", 0))
	require.NoError(t, err)
	assert.Zero(t, empty.MealsLogged)

	logs, err := s.FoodLogsForDate(ctx, p.ID, at("2024-03-05", 0))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.MealOther, logs[0].MealType)
	assert.True(t, at("2024-03-05", 8).Equal(logs[0].LoggedAt))

	require.NoError(t, s.AddWaterLog(ctx, &models.WaterLog{UserID: p.ID, LoggedAt: at("2024-03-04", 9), AmountML: 250}))
	require.NoError(t, s.AddWaterLog(ctx, &models.WaterLog{UserID: p.ID, LoggedAt: at("2024-03-04", 15), AmountML: 500}))
	water, err := s.DailyWater(ctx, p.ID, at("2024-03-04", 0))
	require.NoError(t, err)
	assert.Equal(t, 750, water)
}

func TestWeightHistoryNewestFirst(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)

	for i, kg := range []float64{81, 80.5, 80.2, 79.9} {
		day := at("2024-03-01", 7).AddDate(0, 0, i*2)
		require.NoError(t, s.AddWeightLog(ctx, &models.WeightLog{UserID: p.ID, LoggedAt: day, WeightKg: kg}))
	}

	history, err := s.WeightHistory(ctx, p.ID, at("2024-03-03", 0), at("2024-03-07", 23))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 79.9, history[0].WeightKg)
	assert.Equal(t, 80.5, history[2].WeightKg)
}

func TestLatestWeight(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)

	_, err := s.LatestWeight(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.AddWeightLog(ctx, &models.WeightLog{UserID: p.ID, LoggedAt: at("2024-03-05", 7), WeightKg: 79.5}))
	require.NoError(t, s.AddWeightLog(ctx, &models.WeightLog{UserID: p.ID, LoggedAt: at("2024-03-02", 7), WeightKg: 81}))

	latest, err := s.LatestWeight(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 79.5, latest.WeightKg)
	assert.True(t, latest.LoggedAt.Equal(at("2024-03-05", 7)))
}

func TestStreaks(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createUser(t, s, 1)

	st, err := s.GetStreak(ctx, p.ID, models.StreakLogging)
	require.NoError(t, err)
	assert.Zero(t, st.Current)

	st, err = s.UpdateStreak(ctx, p.ID, models.StreakLogging, at("2024-03-04", 9))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Current)

	st, err = s.UpdateStreak(ctx, p.ID, models.StreakLogging, at("2024-03-04", 20))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Current)

	st, err = s.UpdateStreak(ctx, p.ID, models.StreakLogging, at("2024-03-05", 9))
	require.NoError(t, err)
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, 2, st.Longest)

	st, err = s.UpdateStreak(ctx, p.ID, models.StreakLogging, at("2024-03-09", 9))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, 2, st.Longest)

	water, err := s.GetStreak(ctx, p.ID, models.StreakWater)
	require.NoError(t, err)
	assert.Zero(t, water.Longest)

	stored, err := s.GetStreak(ctx, p.ID, models.StreakLogging)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", stored.LastActivityDate)
}
