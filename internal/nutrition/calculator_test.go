package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diet-agent/internal/models"
)

var allGoals = []models.GoalType{
	models.GoalWeightLoss,
	models.GoalMuscleGain,
	models.GoalMaintenance,
	models.GoalKeto,
	models.GoalIntermittentFasting,
}

func TestTargetsReferenceMaleMaintenance(t *testing.T) {
	assert.Equal(t, 1684, BMR(70, 175, 30, models.GenderMale))
	assert.Equal(t, 2610, TDEE(70, 175, 30, models.GenderMale, models.ActivityModerate))

	// fat is 2610*.25/9 = 72.5 and rounds up
	got := Targets(70, 175, 30, models.GenderMale, models.ActivityModerate, models.GoalMaintenance, 0)
	assert.Equal(t, models.NutritionTargets{Calories: 2610, ProteinG: 163, CarbsG: 326, FatG: 73}, got)
}

func TestBMRFemale(t *testing.T) {
	// 10*60 + 6.25*165 - 5*40 - 161 = 1270.25
	assert.Equal(t, 1270, BMR(60, 165, 40, models.GenderFemale))
}

func TestBMROtherIsMeanOfFormulas(t *testing.T) {
	cases := []struct {
		w, h float64
		age  int
	}{
		{70, 175, 30},
		{55.5, 160, 22},
		{120, 190, 65},
		{43, 151, 17},
	}
	for _, c := range cases {
		male := bmrRaw(c.w, c.h, c.age, models.GenderMale)
		female := bmrRaw(c.w, c.h, c.age, models.GenderFemale)
		other := bmrRaw(c.w, c.h, c.age, models.GenderOther)
		assert.Equal(t, (male+female)/2, other)
		assert.Equal(t, round((male+female)/2), BMR(c.w, c.h, c.age, models.GenderOther))
	}
}

func TestUnknownEnumsUseDefaults(t *testing.T) {
	assert.Equal(t, 1.2, ActivityMultiplier("couch"))
	assert.Equal(t, 1.0, GoalAdjustment("bulk"))
	assert.Equal(t, macroRatios[models.GoalMaintenance], MacroRatios("bulk"))
	assert.Equal(t,
		Targets(80, 180, 35, models.GenderMale, models.ActivityModerate, models.GoalMaintenance, 0),
		Targets(80, 180, 35, models.GenderMale, models.ActivityModerate, "bulk", 0),
	)
}

func TestMacroRatiosSumToOne(t *testing.T) {
	for _, g := range allGoals {
		r := MacroRatios(g)
		assert.InDelta(t, 1.0, r.Protein+r.Carbs+r.Fat, 1e-9, "goal %s", g)
	}
}

func TestTargetMacrosReconstructCalories(t *testing.T) {
	for _, g := range allGoals {
		tg := Targets(82, 178, 41, models.GenderFemale, models.ActivityLight, g, 0)
		kcal := tg.ProteinG*ProteinKcalPerGram + tg.CarbsG*CarbsKcalPerGram + tg.FatG*FatKcalPerGram
		// each macro is rounded to the gram, so at most 2+2+4.5 kcal of drift
		assert.LessOrEqual(t, math.Abs(float64(kcal-tg.Calories)), 9.0, "goal %s", g)
	}
}

func TestTargetsCustomCalories(t *testing.T) {
	got := Targets(70, 175, 30, models.GenderMale, models.ActivityModerate, models.GoalKeto, 2000)
	assert.Equal(t, models.NutritionTargets{Calories: 2000, ProteinG: 125, CarbsG: 25, FatG: 156}, got)
}

func TestTargetsIdempotent(t *testing.T) {
	a := Targets(91.3, 183, 27, models.GenderOther, models.ActivityVeryActive, models.GoalMuscleGain, 0)
	b := Targets(91.3, 183, 27, models.GenderOther, models.ActivityVeryActive, models.GoalMuscleGain, 0)
	assert.Equal(t, a, b)
}

func TestTargetsForProfile(t *testing.T) {
	_, err := TargetsForProfile(&models.Profile{WeightKg: 70, HeightCm: 175})
	require.ErrorIs(t, err, ErrIncompleteProfile)

	p := &models.Profile{WeightKg: 70, HeightCm: 175, Age: 30}
	got, err := TargetsForProfile(p)
	require.NoError(t, err)
	assert.Equal(t, Targets(70, 175, 30, models.GenderOther, models.ActivityModerate, models.GoalMaintenance, 0), got)
}

func TestWaterTarget(t *testing.T) {
	assert.Equal(t, 3400, WaterTarget(80, models.ActivityVeryActive))
	assert.Equal(t, 2600, WaterTarget(70, models.ActivityActive))
	assert.Equal(t, 2100, WaterTarget(70, models.ActivityModerate))
	assert.Equal(t, 2100, WaterTargetForProfile(&models.Profile{}))
}

func TestMealDistributionSumsToOne(t *testing.T) {
	goals := append([]models.GoalType{""}, allGoals...)
	for _, g := range goals {
		for freq := 0; freq <= 9; freq++ {
			d := MealDistribution(freq, g)
			assert.InDelta(t, 1.0, d.Total(), 0.001, "freq %d goal %s", freq, g)
		}
	}
}

func TestMealDistributionFastingSkipsBreakfast(t *testing.T) {
	for freq := 1; freq <= 8; freq++ {
		d := MealDistribution(freq, models.GoalIntermittentFasting)
		assert.False(t, d.Has(SlotBreakfast), "freq %d", freq)
		assert.True(t, d.Has(SlotLunch))
		assert.True(t, d.Has(SlotDinner))
	}
	assert.Equal(t, 0.10, MealDistribution(3, models.GoalIntermittentFasting).Share(SlotSnacks))
	assert.False(t, MealDistribution(2, models.GoalIntermittentFasting).Has(SlotSnacks))
}

func TestMealDistributionSnackShare(t *testing.T) {
	assert.Equal(t, DefaultSnackShare, MealDistribution(3, models.GoalMaintenance).SnackShare())
	assert.Equal(t, 0.15, MealDistribution(4, models.GoalMaintenance).SnackShare())
	assert.InDelta(t, 0.25, MealDistribution(6, models.GoalMaintenance).SnackShare(), 1e-9)
	assert.Equal(t, Distribution{{SlotDinner, 1.0}}, MealDistribution(1, models.GoalKeto))
}
