package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"diet-agent/internal/models"
)

var ErrMalformedResponse = errors.New("malformed model response")

// Completer sends a single prompt to a language model and returns its raw
// text answer.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLM is a Provider backed by a language model. Answers are expected to
// carry one JSON object, possibly wrapped in prose.
type LLM struct {
	completer Completer
}

func NewLLM(c Completer) *LLM {
	return &LLM{completer: c}
}

func (l *LLM) Name() string { return l.completer.Name() }

func (l *LLM) GenerateMealPlan(ctx context.Context, p *models.Profile, recent []string) (*models.PlanData, error) {
	var data models.PlanData
	if err := l.ask(ctx, MealPlanPrompt(p, recent), &data); err != nil {
		return nil, err
	}
	if err := validatePlan(&data); err != nil {
		return nil, err
	}
	if data.Snacks == nil {
		data.Snacks = []models.Meal{}
	}
	if data.ShoppingList == nil {
		data.ShoppingList = []models.ShoppingItem{}
	}
	return &data, nil
}

func (l *LLM) ParseFoodLog(ctx context.Context, text string) (models.Nutrition, error) {
	var n models.Nutrition
	if err := l.ask(ctx, FoodLogPrompt(text), &n); err != nil {
		return models.Nutrition{}, err
	}
	if !n.Valid() {
		return models.Nutrition{}, fmt.Errorf("%w: negative nutrition %+v", ErrMalformedResponse, n)
	}
	return n, nil
}

func (l *LLM) SuggestMeal(ctx context.Context, p *models.Profile, slot string, remaining int) (models.Meal, error) {
	var m models.Meal
	if err := l.ask(ctx, SuggestionPrompt(p, slot, remaining), &m); err != nil {
		return models.Meal{}, err
	}
	if err := validateMeal(m); err != nil {
		return models.Meal{}, err
	}
	return m, nil
}

func (l *LLM) ask(ctx context.Context, prompt string, out interface{}) error {
	text, err := l.completer.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%s completion: %w", l.completer.Name(), err)
	}
	jsonStr, err := extractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

func validateMeal(m models.Meal) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: meal without a name", ErrMalformedResponse)
	}
	if !m.Nutrition().Valid() {
		return fmt.Errorf("%w: meal %q has negative nutrition", ErrMalformedResponse, m.Name)
	}
	return nil
}

func validatePlan(d *models.PlanData) error {
	if d.Breakfast == nil && d.Lunch == nil && d.Dinner == nil {
		return fmt.Errorf("%w: plan has no meals", ErrMalformedResponse)
	}
	for _, m := range d.Meals() {
		if err := validateMeal(m); err != nil {
			return err
		}
	}
	return nil
}
