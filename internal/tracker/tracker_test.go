package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diet-agent/internal/models"
)

type fakeStore struct {
	totals  map[string]models.DailyTotals
	water   map[string]int
	weights []models.WeightLog // newest first
	streak  models.Streak
	err     error

	weightFrom, weightTo time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{totals: map[string]models.DailyTotals{}, water: map[string]int{}}
}

func (f *fakeStore) DailyTotals(_ context.Context, _ string, day time.Time) (models.DailyTotals, error) {
	return f.totals[models.DateKey(day)], f.err
}

func (f *fakeStore) DailyWater(_ context.Context, _ string, day time.Time) (int, error) {
	return f.water[models.DateKey(day)], nil
}

func (f *fakeStore) WeightHistory(_ context.Context, _ string, from, to time.Time) ([]models.WeightLog, error) {
	f.weightFrom, f.weightTo = from, to
	return f.weights, nil
}

func (f *fakeStore) GetStreak(_ context.Context, _ string, _ models.StreakType) (models.Streak, error) {
	return f.streak, nil
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s, time.UTC)
	require.NoError(t, err)
	return d
}

func profile(goal models.GoalType) *models.Profile {
	return &models.Profile{
		ID:             "u1",
		GoalType:       goal,
		TargetCalories: 2000,
		TargetProtein:  150,
		TargetCarbs:    250,
		TargetFat:      65,
	}
}

func TestOnTrack(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.OnTrack(1900, 2000, 3))
	assert.True(t, cfg.OnTrack(2300, 2000, 2))
	assert.False(t, cfg.OnTrack(2301, 2000, 2))
	assert.False(t, cfg.OnTrack(2000, 2000, 1))
	assert.True(t, cfg.OnTrack(500, 0, 2))

	strict := Config{OnTrackTolerance: 0.05, MinMealsLogged: 3}
	assert.False(t, strict.OnTrack(1900, 2000, 2))
	assert.True(t, strict.OnTrack(1900, 2000, 3))
}

func TestDailyProgressUsesDefaultTargets(t *testing.T) {
	store := newFakeStore()
	store.totals["2024-05-06"] = models.DailyTotals{Nutrition: models.Nutrition{Calories: 1850, Protein: 120, Carbs: 200, Fat: 60}, MealsLogged: 3}
	store.water["2024-05-06"] = 1750

	tr := New(store, Config{})
	dp, err := tr.DailyProgress(context.Background(), &models.Profile{ID: "u1"}, day(t, "2024-05-06"))
	require.NoError(t, err)
	assert.Equal(t, models.DailyProgress{
		Date:             "2024-05-06",
		CaloriesConsumed: 1850,
		CaloriesTarget:   2000,
		ProteinConsumed:  120,
		ProteinTarget:    150,
		CarbsConsumed:    200,
		CarbsTarget:      250,
		FatConsumed:      60,
		FatTarget:        65,
		WaterML:          1750,
		MealsLogged:      3,
		OnTrack:          true,
	}, dp)
}

func TestDailyProgressPropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("db closed")
	_, err := New(store, DefaultConfig()).DailyProgress(context.Background(), profile(models.GoalMaintenance), day(t, "2024-05-06"))
	assert.ErrorContains(t, err, "db closed")
}

func TestWeeklyReportAveragesOverSevenDays(t *testing.T) {
	store := newFakeStore()
	store.totals["2024-05-01"] = models.DailyTotals{Nutrition: models.Nutrition{Calories: 2100, Protein: 140, Carbs: 210, Fat: 70}, MealsLogged: 3}
	store.totals["2024-05-04"] = models.DailyTotals{Nutrition: models.Nutrition{Calories: 1400, Protein: 70, Carbs: 140, Fat: 35}, MealsLogged: 1}
	store.totals["2024-05-07"] = models.DailyTotals{Nutrition: models.Nutrition{Calories: 1950, Protein: 150, Carbs: 200, Fat: 60}, MealsLogged: 2}
	store.totals["2024-04-30"] = models.DailyTotals{Nutrition: models.Nutrition{Calories: 9999}, MealsLogged: 9}
	store.water["2024-05-02"] = 3500
	store.streak = models.Streak{Current: 4, Longest: 9}

	rep, err := New(store, DefaultConfig()).WeeklyReport(context.Background(), profile(models.GoalMaintenance), day(t, "2024-05-07").Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01", rep.StartDate)
	assert.Equal(t, "2024-05-07", rep.EndDate)
	require.Len(t, rep.Days, 7)
	assert.Equal(t, 7, rep.TotalDays)

	var sum int
	for _, d := range rep.Days {
		sum += d.CaloriesConsumed
	}
	assert.InDelta(t, float64(sum)/7, rep.AvgCalories, 1e-9)
	assert.InDelta(t, 5450.0/7, rep.AvgCalories, 1e-9)
	assert.InDelta(t, 360.0/7, rep.AvgProtein, 1e-9)
	assert.InDelta(t, 500.0, rep.AvgWaterML, 1e-9)
	assert.Equal(t, 2, rep.DaysOnTrack)
	assert.Equal(t, 4, rep.LoggingStreak)
	assert.Nil(t, rep.WeightChange)

	assert.Equal(t, "2024-05-01", models.DateKey(store.weightFrom))
	assert.Equal(t, "2024-05-07", models.DateKey(store.weightTo))
}

func TestWeightChangeNewestMinusOldest(t *testing.T) {
	assert.Nil(t, WeightChange(nil))
	assert.Nil(t, WeightChange([]models.WeightLog{{WeightKg: 80}}))

	change := WeightChange([]models.WeightLog{{WeightKg: 79.2}, {WeightKg: 79.6}, {WeightKg: 80}})
	require.NotNil(t, change)
	assert.InDelta(t, -0.8, *change, 1e-9)
}

func weekOf(dp models.DailyProgress, n int) []models.DailyProgress {
	days := make([]models.DailyProgress, 7)
	for i := range days {
		if i < n {
			days[i] = dp
		}
	}
	return days
}

func TestRecommendWeightLoss(t *testing.T) {
	p := profile(models.GoalWeightLoss)
	logged := models.DailyProgress{MealsLogged: 3}

	over := &models.WeeklyReport{Days: weekOf(logged, 7), AvgCalories: 2300, AvgProtein: 150, AvgWaterML: 2000}
	assert.Equal(t, []string{msgOverTarget}, Recommend(p, over))

	under := &models.WeeklyReport{Days: weekOf(logged, 7), AvgCalories: 1500, AvgProtein: 150, AvgWaterML: 2000}
	assert.Equal(t, []string{msgUnderTarget}, Recommend(p, under))

	loss := -0.5
	steady := &models.WeeklyReport{Days: weekOf(logged, 7), AvgCalories: 1900, AvgProtein: 150, AvgWaterML: 2000, WeightChange: &loss}
	assert.Equal(t, []string{msgHealthyLoss}, Recommend(p, steady))

	small := -0.2
	steady.WeightChange = &small
	assert.Empty(t, Recommend(p, steady))
}

func TestRecommendMuscleGain(t *testing.T) {
	p := profile(models.GoalMuscleGain)
	r := &models.WeeklyReport{Days: weekOf(models.DailyProgress{MealsLogged: 2}, 7), AvgCalories: 1800, AvgProtein: 130, AvgWaterML: 2500}
	assert.Equal(t, []string{msgEatMoreForGain, msgProteinForGain}, Recommend(p, r))
}

func TestRecommendGenericRulesInOrder(t *testing.T) {
	p := profile(models.GoalMaintenance)
	r := &models.WeeklyReport{Days: weekOf(models.DailyProgress{MealsLogged: 1}, 2), AvgCalories: 700, AvgProtein: 40.4, AvgWaterML: 600}
	assert.Equal(t, []string{
		"Your protein intake is low (avg 40g vs target 150g). Add lean meats, eggs, legumes, or Greek yogurt.",
		msgLogConsistently,
		msgLowWater,
	}, Recommend(p, r))
}

func TestRecommendPraiseLeadsAndCapsAtFive(t *testing.T) {
	p := profile(models.GoalMuscleGain)
	onTrack := models.DailyProgress{MealsLogged: 2, OnTrack: true}

	days := weekOf(onTrack, 3)
	r := &models.WeeklyReport{Days: days, AvgCalories: 1000, AvgProtein: 50, AvgWaterML: 100}
	recs := Recommend(p, r)
	require.Len(t, recs, 5)
	assert.Equal(t, msgGoodWeek, recs[0])
	assert.Equal(t, msgEatMoreForGain, recs[1])
	assert.Equal(t, msgProteinForGain, recs[2])
	assert.Contains(t, recs[3], "protein intake is low")
	assert.Equal(t, msgLogConsistently, recs[4])

	r.Days = weekOf(onTrack, 5)
	r.AvgWaterML = 2000
	recs = Recommend(p, r)
	assert.Equal(t, msgExcellentWeek, recs[0])
	assert.NotContains(t, recs, msgLogConsistently)
}
