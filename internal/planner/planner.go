// Package planner produces meal plans, food-log estimates and meal
// suggestions. Model-backed providers are always wrapped by Planner, which
// falls back to the rule-based provider on any failure.
package planner

import (
	"context"
	"time"

	"diet-agent/internal/config"
	"diet-agent/internal/logger"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
)

const (
	ProviderOllama     = "ollama"
	ProviderGroq       = "groq"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderRuleBased  = "rule_based"
)

type Provider interface {
	Name() string
	GenerateMealPlan(ctx context.Context, p *models.Profile, recent []string) (*models.PlanData, error)
	ParseFoodLog(ctx context.Context, text string) (models.Nutrition, error)
	SuggestMeal(ctx context.Context, p *models.Profile, slot string, remaining int) (models.Meal, error)
}

// Planner runs a provider and downgrades every failure to the rule-based
// result, so its methods cannot fail.
type Planner struct {
	provider  Provider
	fallback  *RuleBased
	providers map[string]Provider
	timeout   time.Duration
	log       *logger.Logger
}

// New wraps provider. A nil provider means rule-based only. timeout bounds
// each provider call; zero leaves the caller's context alone.
func New(provider Provider, fallback *RuleBased, timeout time.Duration, log *logger.Logger) *Planner {
	if fallback == nil {
		fallback = NewRuleBased(nil)
	}
	if provider == nil {
		provider = fallback
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{
		provider:  provider,
		fallback:  fallback,
		providers: map[string]Provider{provider.Name(): provider, fallback.Name(): fallback},
		timeout:   timeout,
		log:       log,
	}
}

// FromConfig registers every provider the configuration has credentials
// for and uses AI_PROVIDER as the default.
func FromConfig(cfg *config.Config, log *logger.Logger) *Planner {
	fallback := NewRuleBased(nil)
	providers := map[string]Provider{
		ProviderRuleBased: fallback,
		ProviderOllama:    NewLLM(NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.AITimeout)),
	}
	if cfg.GroqAPIKey != "" {
		providers[ProviderGroq] = NewLLM(NewGroq(cfg.GroqAPIKey, cfg.GroqModel, cfg.AITimeout))
	}
	if cfg.GeminiAPIKey != "" {
		providers[ProviderGemini] = NewLLM(NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout))
	}
	if cfg.MCPProxyURL != "" && cfg.MCPProxyAPIKey != "" {
		providers[ProviderOpenRouter] = NewLLM(NewGateway(cfg.MCPProxyURL, cfg.MCPProxyAPIKey, cfg.OpenRouterModel, cfg.AITimeout))
	}

	def, ok := providers[cfg.AIProvider]
	if !ok {
		if log != nil {
			log.Warn("AI provider unavailable, using rule-based planning", "provider", cfg.AIProvider)
		}
		def = fallback
	}
	p := New(def, fallback, cfg.AITimeout, log)
	p.providers = providers
	return p
}

func (p *Planner) ProviderName() string { return p.provider.Name() }

// With returns a planner using the named provider, for users who picked
// one in their settings. Unknown or unconfigured names keep the default.
func (p *Planner) With(name string) *Planner {
	prov, ok := p.providers[name]
	if !ok || prov == p.provider {
		return p
	}
	cp := *p
	cp.provider = prov
	return &cp
}

func (p *Planner) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Planner) usingFallback() bool {
	return p.provider == Provider(p.fallback)
}

// GenerateMealPlan returns a plan for the profile, avoiding the recent
// meal names where the catalog allows it.
func (p *Planner) GenerateMealPlan(ctx context.Context, profile *models.Profile, recent []string) *models.PlanData {
	if !p.usingFallback() {
		cctx, cancel := p.callCtx(ctx)
		data, err := p.provider.GenerateMealPlan(cctx, profile, recent)
		cancel()
		if err == nil {
			return data
		}
		p.log.Warn("AI provider failed, using rule-based fallback", "provider", p.provider.Name(), "op", "generate_meal_plan", "error", err)
	}
	data, _ := p.fallback.GenerateMealPlan(ctx, profile, recent)
	return data
}

func (p *Planner) ParseFoodLog(ctx context.Context, text string) models.Nutrition {
	if !p.usingFallback() {
		cctx, cancel := p.callCtx(ctx)
		n, err := p.provider.ParseFoodLog(cctx, text)
		cancel()
		if err == nil {
			return n
		}
		p.log.Warn("AI provider failed, using keyword estimate", "provider", p.provider.Name(), "op", "parse_food_log", "error", err)
	}
	return nutrition.EstimateFoodNutrition(text)
}

func (p *Planner) SuggestMeal(ctx context.Context, profile *models.Profile, slot string, remaining int) models.Meal {
	if !p.usingFallback() {
		cctx, cancel := p.callCtx(ctx)
		m, err := p.provider.SuggestMeal(cctx, profile, slot, remaining)
		cancel()
		if err == nil {
			return m
		}
		p.log.Warn("AI provider failed, using rule-based fallback", "provider", p.provider.Name(), "op", "suggest_meal", "error", err)
	}
	m, _ := p.fallback.SuggestMeal(ctx, profile, slot, remaining)
	return m
}
