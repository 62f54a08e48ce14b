package catalog

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ts []Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestFilterByRestrictionsVegetarian(t *testing.T) {
	got := names(FilterByRestrictions(ForSlot(SlotDinner), []string{"Vegetarian"}))
	assert.Equal(t, []string{"Vegetable Curry with Rice", "Pasta Primavera", "Palak Paneer with Naan"}, got)
}

func TestFilterByRestrictionsVeganDropsDairyAndEggs(t *testing.T) {
	got := names(FilterByRestrictions(ForSlot(SlotBreakfast), []string{"vegan"}))
	assert.NotContains(t, got, "Scrambled Eggs with Toast")
	assert.NotContains(t, got, "Greek Yogurt Parfait")
	assert.Contains(t, got, "Poha")
}

func TestFilterByRestrictionsGlutenFree(t *testing.T) {
	got := names(FilterByRestrictions(ForSlot(SlotLunch), []string{"gluten-free"}))
	assert.NotContains(t, got, "Turkey Wrap")
	assert.NotContains(t, got, "Chicken Tikka with Roti")
	assert.Contains(t, got, "Dal with Rice")
}

func TestFilterByRestrictionsIgnoresUnknownTags(t *testing.T) {
	all := ForSlot(SlotSnacks)
	assert.Equal(t, all, FilterByRestrictions(all, []string{"nut allergy", "low-sodium"}))
}

func TestFilterByRestrictionsNeverEmpty(t *testing.T) {
	meaty := []Template{
		{Name: "Beef Stew", Calories: 500},
		{Name: "Chicken Soup", Calories: 300},
		{Name: "Fish Pie", Calories: 450},
	}
	got := FilterByRestrictions(meaty, []string{"vegan"})
	assert.Equal(t, meaty[:2], got)

	one := meaty[:1]
	assert.Equal(t, one, FilterByRestrictions(one, []string{"vegetarian"}))

	for _, slot := range []string{SlotBreakfast, SlotLunch, SlotDinner, SlotSnacks} {
		for _, r := range [][]string{{"vegan"}, {"vegan", "gluten-free"}, {"vegetarian", "gluten-free"}} {
			assert.NotEmpty(t, FilterByRestrictions(ForSlot(slot), r), "%s %v", slot, r)
		}
	}
}

func TestFilterByCuisine(t *testing.T) {
	got := names(FilterByCuisine(ForSlot(SlotLunch), []string{"Indian"}))
	assert.Equal(t, []string{
		"Grilled Chicken Salad",
		"Quinoa Buddha Bowl",
		"Turkey Wrap",
		"Dal with Rice",
		"Stir Fry with Tofu",
		"Chicken Tikka with Roti",
	}, got)

	all := ForSlot(SlotLunch)
	assert.Equal(t, all, FilterByCuisine(all, nil))

	indianOnly := []Template{{Name: "Poha", Cuisines: []string{"indian"}}}
	assert.Equal(t, indianOnly, FilterByCuisine(indianOnly, []string{"mexican"}))
}

func TestForSlotUnknownFallsBackToSnacks(t *testing.T) {
	assert.Equal(t, ForSlot(SlotSnacks), ForSlot("snack"))
	assert.Equal(t, ForSlot(SlotDinner), ForSlot("Dinner"))
}

func TestForSlotReturnsCopy(t *testing.T) {
	a := ForSlot(SlotSnacks)
	a[0].Name = "changed"
	assert.Equal(t, "Apple with Almond Butter", ForSlot(SlotSnacks)[0].Name)
}

func TestPickRandomAvoidsRecent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	candidates := ForSlot(SlotBreakfast)
	recent := names(candidates[:6])
	for i := 0; i < 20; i++ {
		assert.Equal(t, "Smoothie Bowl", PickRandom(rng, candidates, recent).Name)
	}

	all := names(candidates)
	got := PickRandom(rng, candidates, all)
	assert.Contains(t, all, got.Name)
}

func TestClosest(t *testing.T) {
	snacks := ForSlot(SlotSnacks)
	assert.Equal(t, "Roasted Chickpeas", Closest(snacks, 50).Name)
	assert.Equal(t, "Mixed Nuts", Closest(snacks, 185).Name)
	assert.Equal(t, "Apple with Almond Butter", Closest(snacks, 1000).Name)
	assert.Equal(t, "Greek Yogurt", Closest(snacks, 150).Name)
}

func TestCandidates(t *testing.T) {
	got := Candidates(SlotDinner, []string{"vegetarian"}, []string{"italian"})
	require.Len(t, got, 1)
	assert.Equal(t, "Pasta Primavera", got[0].Name)
}

func TestFoodsToAvoid(t *testing.T) {
	assert.Equal(t, []string{"milk", "cheese", "yogurt", "cream", "butter"}, FoodsToAvoid("Lactose-Free"))
	assert.Equal(t, []string{"shellfish"}, FoodsToAvoid("shellfish"))
}
