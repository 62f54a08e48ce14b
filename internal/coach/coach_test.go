package coach

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
	"diet-agent/internal/planner"
	"diet-agent/internal/storage"
	"diet-agent/internal/tracker"
)

var clock = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p := planner.New(nil, planner.NewRuleBased(rand.New(rand.NewPCG(3, 5))), 0, nil)
	svc := New(store, p, tracker.DefaultConfig(), time.UTC, nil)
	svc.now = func() time.Time { return clock }
	return svc, store
}

func registered(t *testing.T, svc *Service) *models.Profile {
	t.Helper()
	p, created, err := svc.Register(context.Background(), 100, "sam", "Sam")
	require.NoError(t, err)
	require.True(t, created)
	return p
}

func ptr[T any](v T) *T { return &v }

func TestRegisterOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	again, created, err := svc.Register(ctx, 100, "sam", "Sam")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)

	st, err := svc.Settings(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, planner.ProviderRuleBased, st.AIProvider)
	assert.Equal(t, "UTC", st.Timezone)

	_, err = svc.User(ctx, 999)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestUpdateProfileRecomputesTargets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered(t, svc)

	p, err := svc.UpdateProfile(ctx, 100, models.ProfileUpdate{
		Age:           ptr(30),
		Gender:        ptr(models.GenderMale),
		HeightCm:      ptr(180.0),
		WeightKg:      ptr(80.0),
		ActivityLevel: ptr(models.ActivityModerate),
		GoalType:      ptr(models.GoalWeightLoss),
	})
	require.NoError(t, err)

	want, err := nutrition.TargetsForProfile(p)
	require.NoError(t, err)
	assert.Equal(t, want, p.Targets())

	history, err := svc.WeightHistory(ctx, p)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 80.0, history[0].WeightKg)

	p, err = svc.UpdateProfile(ctx, 100, models.ProfileUpdate{WeightKg: ptr(78.0), TargetCalories: ptr(1700)})
	require.NoError(t, err)
	assert.Equal(t, nutrition.MacrosFor(1700, models.GoalWeightLoss), p.Targets())

	_, err = svc.UpdateProfile(ctx, 100, models.ProfileUpdate{Age: ptr(5)})
	assert.ErrorIs(t, err, models.ErrInvalidProfile)
}

func TestCalorieTargetSplitsMacros(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	registered(t, svc)

	_, err := svc.UpdateProfile(ctx, 100, models.ProfileUpdate{
		Age: ptr(30), Gender: ptr(models.GenderMale), HeightCm: ptr(175.0), WeightKg: ptr(70.0),
		ActivityLevel: ptr(models.ActivityModerate), GoalType: ptr(models.GoalMaintenance),
	})
	require.NoError(t, err)

	p, err := svc.UpdateProfile(ctx, 100, models.ProfileUpdate{TargetCalories: ptr(1500)})
	require.NoError(t, err)
	want := models.NutritionTargets{Calories: 1500, ProteinG: 94, CarbsG: 188, FatG: 42}
	assert.Equal(t, want, p.Targets())

	stored, err := store.GetUserByTelegramID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, want, stored.Targets())

	p, err = svc.UpdateProfile(ctx, 100, models.ProfileUpdate{TargetCalories: ptr(1600), TargetProtein: ptr(120)})
	require.NoError(t, err)
	assert.Equal(t, models.NutritionTargets{Calories: 1600, ProteinG: 120, CarbsG: 188, FatG: 42}, p.Targets())

	// A body-metric change recomputes every target from the formulas.
	p, err = svc.UpdateProfile(ctx, 100, models.ProfileUpdate{WeightKg: ptr(69.0)})
	require.NoError(t, err)
	recomputed, err := nutrition.TargetsForProfile(p)
	require.NoError(t, err)
	assert.Equal(t, recomputed, p.Targets())
}

func TestRecalculateTargetsNeedsMetrics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered(t, svc)

	_, err := svc.RecalculateTargets(ctx, 100)
	assert.ErrorIs(t, err, nutrition.ErrIncompleteProfile)

	_, err = svc.UpdateProfile(ctx, 100, models.ProfileUpdate{Age: ptr(40), HeightCm: ptr(165.0), WeightKg: ptr(70.0)})
	require.NoError(t, err)
	targets, err := svc.RecalculateTargets(ctx, 100)
	require.NoError(t, err)
	assert.Positive(t, targets.Calories)
}

func TestTodayPlanIsStable(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	plan, err := svc.TodayPlan(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", plan.PlanDate)
	require.NoError(t, plan.Verify())

	same, err := svc.TodayPlan(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, same.ID)
	assert.Equal(t, plan.TotalCalories, same.TotalCalories)

	fresh, err := svc.RegeneratePlan(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, fresh.ID)

	plans, err := store.RecentMealPlans(ctx, p.ID, clock.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestQuickLogAndStreak(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	res, err := svc.QuickLog(ctx, p, "Eggs")
	require.NoError(t, err)
	assert.Equal(t, "2 eggs", res.Log.Description)
	assert.Equal(t, models.MealBreakfast, res.Log.MealType)
	assert.Equal(t, 156, res.Totals.Calories)
	assert.Equal(t, 1, res.Totals.MealsLogged)
	assert.Equal(t, models.DefaultTargets.Calories, res.Target)

	_, err = svc.QuickLog(ctx, p, "toast")
	require.NoError(t, err)
	streak, err := store.GetStreak(ctx, p.ID, models.StreakLogging)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)

	_, err = svc.QuickLog(ctx, p, "pizza")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Len(t, QuickItems(), 10)
}

func TestBackfilledEntriesKeepStreak(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	for d := 2; d >= 0; d-- {
		day := clock.AddDate(0, 0, -d)
		svc.now = func() time.Time { return day }
		_, err := svc.QuickLog(ctx, p, "apple")
		require.NoError(t, err)
		_, err = svc.LogWater(ctx, p, 250, nil)
		require.NoError(t, err)
	}

	old := clock.AddDate(0, 0, -6)
	_, err := svc.LogFoodEntry(ctx, p, FoodEntry{
		Description: "Pasta",
		Nutrition:   models.Nutrition{Calories: 500, Protein: 15, Carbs: 80, Fat: 10},
		LoggedAt:    &old,
	})
	require.NoError(t, err)
	_, err = svc.LogWater(ctx, p, 300, &old)
	require.NoError(t, err)
	_, err = svc.QuickLog(ctx, p, "banana")
	require.NoError(t, err)

	logging, err := store.GetStreak(ctx, p.ID, models.StreakLogging)
	require.NoError(t, err)
	assert.Equal(t, 3, logging.Current)
	assert.Equal(t, "2024-03-04", logging.LastActivityDate)

	water, err := store.GetStreak(ctx, p.ID, models.StreakWater)
	require.NoError(t, err)
	assert.Equal(t, 3, water.Current)

	report, err := svc.WeeklyReport(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 3, report.LoggingStreak)
}

func TestLogFoodEstimates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	res, err := svc.LogFood(ctx, p, "  grilled chicken with rice ")
	require.NoError(t, err)
	assert.Equal(t, "grilled chicken with rice", res.Log.Description)
	assert.Equal(t, models.SourceAIParsed, res.Log.Source)
	assert.Equal(t, nutrition.EstimateFoodNutrition("grilled chicken with rice"), res.Log.Nutrition)

	_, err = svc.LogFood(ctx, p, " ")
	assert.Error(t, err)
}

func TestLogFoodEntryUsesTimestampDay(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	yesterday := clock.AddDate(0, 0, -1)
	res, err := svc.LogFoodEntry(ctx, p, FoodEntry{
		Description: "Burrito",
		MealType:    "lunch",
		Nutrition:   models.Nutrition{Calories: 600, Protein: 25, Carbs: 70, Fat: 20},
		LoggedAt:    &yesterday,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceSync, res.Log.Source)
	assert.Equal(t, 600, res.Totals.Calories)

	today, err := store.DailyTotals(ctx, p.ID, clock)
	require.NoError(t, err)
	assert.Zero(t, today.Calories)

	_, err = svc.LogFoodEntry(ctx, p, FoodEntry{Description: "x", Nutrition: models.Nutrition{Calories: -1}})
	assert.Error(t, err)
}

func TestLogWaterDefaultsToGlass(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	res, err := svc.LogWater(ctx, p, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 250, res.AmountML)

	res, err = svc.LogWater(ctx, p, 500, nil)
	require.NoError(t, err)
	assert.Equal(t, 750, res.TotalML)
	assert.Equal(t, nutrition.WaterTargetForProfile(p), res.TargetML)
}

func TestLogWeight(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	_, err := svc.LogWeight(ctx, p, 19, nil)
	assert.ErrorIs(t, err, models.ErrInvalidProfile)

	earlier := clock.AddDate(0, 0, -3)
	res, err := svc.LogWeight(ctx, p, 80, &earlier)
	require.NoError(t, err)
	assert.Nil(t, res.Change)

	res, err = svc.LogWeight(ctx, p, 79.2, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Change)
	assert.InDelta(t, -0.8, *res.Change, 1e-9)

	stored, err := store.GetUser(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 79.2, stored.WeightKg)

	replayed := clock.AddDate(0, 0, -2)
	res, err = svc.LogWeight(ctx, p, 81.4, &replayed)
	require.NoError(t, err)
	assert.Equal(t, 81.4, res.WeightKg)

	stored, err = store.GetUser(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 79.2, stored.WeightKg)
	assert.Equal(t, 79.2, p.WeightKg)
}

func TestStatsAndSuggestions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	_, err := svc.QuickLog(ctx, p, "sandwich")
	require.NoError(t, err)
	_, err = svc.LogWater(ctx, p, 1050, nil)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, CalorieStats{Consumed: 350, Target: 2000, Remaining: 1650}, stats.Calories)
	assert.Equal(t, ProteinStats{Consumed: 15, Target: 150}, stats.Protein)
	assert.Equal(t, WaterStats{ConsumedML: 1050, TargetML: 2100, Percentage: 50}, stats.Water)
	assert.Equal(t, 1, stats.MealsLogged)

	meal, left, err := svc.Suggest(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1650, left)
	assert.NotEmpty(t, meal.Name)

	snack, _, err := svc.Snack(ctx, p)
	require.NoError(t, err)
	assert.NotEmpty(t, snack.Name)

	progress, err := svc.DailyProgress(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", progress.Date)
	assert.False(t, progress.OnTrack)

	report, err := svc.WeeklyReport(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-27", report.StartDate)
	assert.Equal(t, 1, report.LoggingStreak)
}

func TestSnackSize(t *testing.T) {
	assert.Equal(t, 200, SnackSize(301))
	assert.Equal(t, 100, SnackSize(300))
	assert.Equal(t, 100, SnackSize(151))
	assert.Equal(t, 50, SnackSize(150))
	assert.Equal(t, 50, SnackSize(-200))
}

func TestUpdateSettings(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	p := registered(t, svc)

	_, err := svc.UpdateSettings(ctx, p, SettingsUpdate{AIProvider: ptr("chatgpt")})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	_, err = svc.UpdateSettings(ctx, p, SettingsUpdate{MorningPlanTime: ptr("7am")})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	st, err := svc.UpdateSettings(ctx, p, SettingsUpdate{
		AIProvider:           ptr(planner.ProviderGroq),
		EnableWaterReminders: ptr(true),
		NotificationsEnabled: ptr(false),
	})
	require.NoError(t, err)
	assert.True(t, st.EnableWaterReminders)

	users, err := store.ListNotifiableUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.TodayPlan(ctx, p)
	require.NoError(t, err)
}

func TestFoodsToAvoid(t *testing.T) {
	foods := FoodsToAvoid(&models.Profile{Restrictions: []string{"vegan", "no-mushrooms"}})
	require.Len(t, foods, 2)
	assert.Contains(t, foods[0], "meat")
	assert.Equal(t, []string{"no-mushrooms"}, foods[1])
}
