package catalog

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

// Name keywords excluded per restriction. This is a coarse name match, not
// an ingredient lookup.
var (
	meatKeywords   = []string{"chicken", "beef", "fish", "salmon", "steak", "turkey", "meat"}
	animalKeywords = []string{"egg", "yogurt", "cheese", "paneer", "milk"}
	glutenKeywords = []string{"bread", "toast", "pasta", "naan", "roti", "wrap"}
)

// FilterByRestrictions drops templates that conflict with a vegetarian,
// vegan or gluten-free restriction. Other restrictions have no effect.
// When nothing survives, the first two unfiltered templates are returned
// so callers always have candidates.
func FilterByRestrictions(meals []Template, restrictions []string) []Template {
	if len(restrictions) == 0 {
		return meals
	}
	filtered := make([]Template, 0, len(meals))
	for _, m := range meals {
		if !excluded(strings.ToLower(m.Name), restrictions) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return meals[:min(2, len(meals))]
	}
	return filtered
}

func excluded(name string, restrictions []string) bool {
	for _, r := range restrictions {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "vegetarian":
			if containsAny(name, meatKeywords) {
				return true
			}
		case "vegan":
			if containsAny(name, meatKeywords) || containsAny(name, animalKeywords) {
				return true
			}
		case "gluten-free":
			if containsAny(name, glutenKeywords) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FilterByCuisine keeps templates tagged "any" or with one of the
// preferred cuisines. No preferences, or no match at all, returns the
// input unchanged.
func FilterByCuisine(meals []Template, preferences []string) []Template {
	if len(preferences) == 0 {
		return meals
	}
	prefs := make([]string, 0, len(preferences))
	for _, p := range preferences {
		prefs = append(prefs, strings.ToLower(strings.TrimSpace(p)))
	}
	filtered := make([]Template, 0, len(meals))
	for _, m := range meals {
		for _, c := range m.Cuisines {
			c = strings.ToLower(c)
			if c == AnyCuisine || slices.Contains(prefs, c) {
				filtered = append(filtered, m)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return meals
	}
	return filtered
}

// PickRandom chooses uniformly among candidates whose names are not in
// recent, or among all candidates when every one was used recently.
// candidates must not be empty.
func PickRandom(rng *rand.Rand, candidates []Template, recent []string) Template {
	available := make([]Template, 0, len(candidates))
	for _, c := range candidates {
		if !slices.Contains(recent, c.Name) {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		available = candidates
	}
	return available[rng.IntN(len(available))]
}

// Closest returns the candidate whose calories are nearest to target; ties
// go to the earlier template. candidates must not be empty.
func Closest(candidates []Template, target int) Template {
	best := candidates[0]
	bestDiff := math.MaxInt
	for _, c := range candidates {
		diff := c.Calories - target
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	return best
}

// Candidates applies both filters to a slot's templates.
func Candidates(slot string, restrictions, cuisines []string) []Template {
	return FilterByCuisine(FilterByRestrictions(ForSlot(slot), restrictions), cuisines)
}
