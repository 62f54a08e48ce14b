// Package config reads service settings from the environment, after
// loading a .env file when one exists.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"diet-agent/internal/logger"
)

type Config struct {
	LogMode  string
	Host     string
	Port     int
	DBPath   string
	Timezone string

	AIProvider      string
	AITimeout       time.Duration
	OllamaHost      string
	OllamaModel     string
	GroqAPIKey      string
	GroqModel       string
	GeminiAPIKey    string
	GeminiModel     string
	MCPProxyURL     string
	MCPProxyAPIKey  string
	OpenRouterModel string

	TelegramBotToken string
	SyncAPIKey       string

	MorningPlanTime       string
	EveningSummaryTime    string
	WeeklyReportTime      string
	MealReminderTimes     []string
	EnableWaterReminders  bool
	WaterReminderInterval int

	OnTrackTolerance float64
	OnTrackMinMeals  int
}

// Load reads the configuration. A missing .env file is not an error.
func Load(log *logger.Logger) *Config {
	if err := godotenv.Load(); err == nil && log != nil {
		log.Debug("Loaded .env file")
	}
	return &Config{
		LogMode:  GetEnv("LOG_MODE", "dev", log),
		Host:     GetEnv("HOST", "0.0.0.0", log),
		Port:     GetEnvAsInt("PORT", 8011, log),
		DBPath:   GetEnv("DB_PATH", "/data/diet-agent.db", log),
		Timezone: GetEnv("TIMEZONE", "America/New_York", log),

		AIProvider:      strings.ToLower(GetEnv("AI_PROVIDER", "rule_based", log)),
		AITimeout:       time.Duration(GetEnvAsInt("AI_TIMEOUT_SECONDS", 60, log)) * time.Second,
		OllamaHost:      GetEnv("OLLAMA_HOST", "http://localhost:11434", log),
		OllamaModel:     GetEnv("OLLAMA_MODEL", "llama3.2", log),
		GroqAPIKey:      GetEnv("GROQ_API_KEY", "", log),
		GroqModel:       GetEnv("GROQ_MODEL", "llama-3.1-8b-instant", log),
		GeminiAPIKey:    GetEnv("GEMINI_API_KEY", "", log),
		GeminiModel:     GetEnv("GEMINI_MODEL", "gemini-1.5-flash", log),
		MCPProxyURL:     GetEnv("MCP_PROXY_URL", "http://mcp-compose-http-proxy:9876", log),
		MCPProxyAPIKey:  GetEnv("MCP_PROXY_API_KEY", "", log),
		OpenRouterModel: GetEnv("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet", log),

		TelegramBotToken: GetEnv("TELEGRAM_BOT_TOKEN", "", log),
		SyncAPIKey:       GetEnv("SYNC_API_KEY", "", log),

		MorningPlanTime:       GetEnv("MORNING_PLAN_TIME", "07:00", log),
		EveningSummaryTime:    GetEnv("EVENING_SUMMARY_TIME", "20:00", log),
		WeeklyReportTime:      GetEnv("WEEKLY_REPORT_TIME", "09:00", log),
		MealReminderTimes:     GetEnvAsList("MEAL_REMINDER_TIMES", []string{"08:00", "12:00", "18:00"}, log),
		EnableWaterReminders:  GetEnvAsBool("ENABLE_WATER_REMINDERS", false, log),
		WaterReminderInterval: GetEnvAsInt("WATER_REMINDER_INTERVAL", 2, log),

		OnTrackTolerance: GetEnvAsFloat("ON_TRACK_TOLERANCE", 0.15, log),
		OnTrackMinMeals:  GetEnvAsInt("ON_TRACK_MIN_MEALS", 2, log),
	}
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func lookup(key string, log *logger.Logger) (string, *logger.Logger, bool) {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if ok {
		val = strings.TrimSpace(val)
	}
	if !ok || val == "" {
		return "", log, false
	}
	return val, log, true
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, log, ok := lookup(key, log)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	val, log, ok := lookup(key, log)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as int, using default", "providedVal", val, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	return i
}

func GetEnvAsFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	val, log, ok := lookup(key, log)
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as float, using default", "providedVal", val, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	return f
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	val, log, ok := lookup(key, log)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as bool, using default", "providedVal", val, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	return b
}

// GetEnvAsList splits a comma-separated value, dropping blanks.
func GetEnvAsList(key string, defaultVal []string, log *logger.Logger) []string {
	val, _, ok := lookup(key, log)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
