package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        string
	DatabaseURL string

	JWTSecret           string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int

	AnalysisProvider string
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	AnthropicAPIKey  string
	AnthropicModel   string

	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string

	SoloMonthlyPriceID string
	EntMonthlyPriceID  string
	EntYearlyPriceID   string

	TrashRetentionDays  int
	ReportStaleAfterMin int

	CORSOrigins []string
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:           getEnv("JWT_SECRET", ""),
		AccessTokenTTLMin:   getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 90),
		RefreshTokenTTLDays: getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),

		AnalysisProvider: getEnv("ANALYSIS_PROVIDER", "openai"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),

		SoloMonthlyPriceID: getEnv("STRIPE_SOLOPRENEUR_MONTHLY_PRICE_ID", "price_solo_monthly"),
		EntMonthlyPriceID:  getEnv("STRIPE_ENTREPRENEUR_MONTHLY_PRICE_ID", "price_ent_monthly"),
		EntYearlyPriceID:   getEnv("STRIPE_ENTREPRENEUR_YEARLY_PRICE_ID", "price_ent_yearly"),

		TrashRetentionDays:  getEnvInt("TRASH_RETENTION_DAYS", 7),
		ReportStaleAfterMin: getEnvInt("REPORT_STALE_AFTER_MINUTES", 5),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
