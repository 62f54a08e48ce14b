package coach

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
	"diet-agent/internal/tracker"
)

// QuickItem is a one-tap food log preset.
type QuickItem struct {
	Description string
	models.Nutrition
}

var quickItems = map[string]QuickItem{
	"eggs":        {"2 eggs", models.Nutrition{Calories: 156, Protein: 12, Carbs: 2, Fat: 10}},
	"toast":       {"Toast with butter", models.Nutrition{Calories: 120, Protein: 3, Carbs: 20, Fat: 4}},
	"chicken":     {"Grilled chicken breast", models.Nutrition{Calories: 165, Protein: 31, Carbs: 0, Fat: 4}},
	"rice":        {"Cup of rice", models.Nutrition{Calories: 200, Protein: 4, Carbs: 45, Fat: 0}},
	"salad":       {"Mixed salad", models.Nutrition{Calories: 50, Protein: 2, Carbs: 10, Fat: 0}},
	"sandwich":    {"Sandwich", models.Nutrition{Calories: 350, Protein: 15, Carbs: 40, Fat: 15}},
	"apple":       {"Apple", models.Nutrition{Calories: 95, Protein: 0, Carbs: 25, Fat: 0}},
	"banana":      {"Banana", models.Nutrition{Calories: 105, Protein: 1, Carbs: 27, Fat: 0}},
	"yogurt":      {"Greek yogurt", models.Nutrition{Calories: 100, Protein: 10, Carbs: 6, Fat: 3}},
	"protein_bar": {"Protein bar", models.Nutrition{Calories: 200, Protein: 20, Carbs: 22, Fat: 8}},
}

// QuickItems lists the preset keys in sorted order.
func QuickItems() []string {
	keys := make([]string, 0, len(quickItems))
	for k := range quickItems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FoodResult is a stored food log together with the day's running totals.
type FoodResult struct {
	Log    *models.FoodLog    `json:"log"`
	Totals models.DailyTotals `json:"totals"`
	Target int                `json:"target_calories"`
}

// LogFood estimates nutrition for a free-text description and logs it in
// the slot implied by the current hour.
func (s *Service) LogFood(ctx context.Context, p *models.Profile, text string) (*FoodResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("food description is required")
	}
	now := s.Now()
	n := s.plannerFor(ctx, p).ParseFoodLog(ctx, text)
	return s.addFood(ctx, p, &models.FoodLog{
		UserID:      p.ID,
		LoggedAt:    now,
		MealType:    models.MealTypeAt(now),
		Description: text,
		Nutrition:   n,
		Source:      models.SourceAIParsed,
	})
}

// QuickLog logs one of the presets by key.
func (s *Service) QuickLog(ctx context.Context, p *models.Profile, key string) (*FoodResult, error) {
	item, ok := quickItems[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	now := s.Now()
	return s.addFood(ctx, p, &models.FoodLog{
		UserID:      p.ID,
		LoggedAt:    now,
		MealType:    models.MealTypeAt(now),
		Description: item.Description,
		Nutrition:   item.Nutrition,
		Source:      models.SourceQuick,
	})
}

// FoodEntry is a food event with known numbers, as sent by health apps.
type FoodEntry struct {
	Description string
	MealType    string
	Nutrition   models.Nutrition
	LoggedAt    *time.Time
	Source      string
}

func (s *Service) LogFoodEntry(ctx context.Context, p *models.Profile, e FoodEntry) (*FoodResult, error) {
	if strings.TrimSpace(e.Description) == "" {
		return nil, fmt.Errorf("food description is required")
	}
	if !e.Nutrition.Valid() {
		return nil, fmt.Errorf("nutrition values must not be negative")
	}
	source := e.Source
	if source == "" {
		source = models.SourceSync
	}
	return s.addFood(ctx, p, &models.FoodLog{
		UserID:      p.ID,
		LoggedAt:    s.localTime(e.LoggedAt),
		MealType:    models.ParseMealType(e.MealType),
		Description: strings.TrimSpace(e.Description),
		Nutrition:   e.Nutrition,
		Source:      source,
	})
}

// Streaks count the day the user logged, not the day a synced entry is
// dated.
func (s *Service) addFood(ctx context.Context, p *models.Profile, l *models.FoodLog) (*FoodResult, error) {
	if err := s.store.AddFoodLog(ctx, l); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateStreak(ctx, p.ID, models.StreakLogging, s.Now()); err != nil {
		return nil, err
	}
	totals, err := s.store.DailyTotals(ctx, p.ID, l.LoggedAt)
	if err != nil {
		return nil, err
	}
	return &FoodResult{Log: l, Totals: totals, Target: p.Targets().Calories}, nil
}

// WaterResult is a stored water log with the day's total and goal.
type WaterResult struct {
	AmountML int `json:"amount_ml"`
	TotalML  int `json:"daily_total_ml"`
	TargetML int `json:"target_ml"`
}

// LogWater appends a water log; a non-positive amount means one glass.
func (s *Service) LogWater(ctx context.Context, p *models.Profile, amountML int, at *time.Time) (*WaterResult, error) {
	if amountML <= 0 {
		amountML = models.DefaultGlassML
	}
	l := &models.WaterLog{UserID: p.ID, LoggedAt: s.localTime(at), AmountML: amountML}
	if err := s.store.AddWaterLog(ctx, l); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateStreak(ctx, p.ID, models.StreakWater, s.Now()); err != nil {
		return nil, err
	}
	total, err := s.store.DailyWater(ctx, p.ID, l.LoggedAt)
	if err != nil {
		return nil, err
	}
	return &WaterResult{AmountML: amountML, TotalML: total, TargetML: nutrition.WaterTargetForProfile(p)}, nil
}

// WeightResult carries the change over the last week when there are at
// least two weigh-ins.
type WeightResult struct {
	WeightKg float64  `json:"weight_kg"`
	Change   *float64 `json:"weekly_change,omitempty"`
}

// LogWeight appends a weight log. It becomes the profile's current weight
// only when no later weigh-in exists, so replayed history never overwrites
// a newer reading.
func (s *Service) LogWeight(ctx context.Context, p *models.Profile, kg float64, at *time.Time) (*WeightResult, error) {
	if err := models.ValidateWeight(kg); err != nil {
		return nil, err
	}
	l := &models.WeightLog{UserID: p.ID, LoggedAt: s.localTime(at), WeightKg: kg}
	if err := s.store.AddWeightLog(ctx, l); err != nil {
		return nil, err
	}
	latest, err := s.store.LatestWeight(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if latest.ID == l.ID {
		p.WeightKg = kg
		if err := s.store.SaveProfile(ctx, p); err != nil {
			return nil, err
		}
	}
	history, err := s.WeightHistory(ctx, p)
	if err != nil {
		return nil, err
	}
	return &WeightResult{WeightKg: kg, Change: tracker.WeightChange(history)}, nil
}

// WeightHistory returns the last seven days of weigh-ins, newest first.
func (s *Service) WeightHistory(ctx context.Context, p *models.Profile) ([]models.WeightLog, error) {
	today := s.Today()
	history, err := s.store.WeightHistory(ctx, p.ID, today.AddDate(0, 0, -7), today)
	if err != nil {
		return nil, err
	}
	for i := range history {
		history[i].LoggedAt = history[i].LoggedAt.In(s.loc)
	}
	return history, nil
}
