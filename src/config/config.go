package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type AppConfig struct {
	AppName  string
	Port     string
	LogLevel string
	// "text" or "json"
	LogFormat string

	// LLM provider configuration. The client speaks the OpenAI-compatible
	// chat-completions protocol, so alternative providers are selected by
	// pointing OPENAI_BASE_URL at a compatible endpoint.
	LLMProvider   string
	LLMModel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	RateLimitRPS   float64
	RateLimitBurst int

	SessionTTL       time.Duration
	SessionMax       int
	InitialBalance   decimal.Decimal
	AllowedOrigins   []string
	MaxBodySizeBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	sessionTTLStr := getEnv("SESSION_TTL", "30m")
	sessionTTL, err := time.ParseDuration(sessionTTLStr)
	if err != nil {
		log.Printf("WARNING: Invalid SESSION_TTL format '%s'. Using default 30m. Error: %v", sessionTTLStr, err)
		sessionTTL = 30 * time.Minute
	}

	initialBalanceStr := getEnv("INITIAL_BALANCE", "1000.00")
	initialBalance, err := decimal.NewFromString(initialBalanceStr)
	if err != nil {
		log.Printf("WARNING: Invalid INITIAL_BALANCE format '%s'. Using default 1000.00. Error: %v", initialBalanceStr, err)
		initialBalance = decimal.NewFromInt(1000)
	}

	rateLimitRPSStr := getEnv("RATE_LIMIT_RPS", "10")
	rateLimitRPS, err := strconv.ParseFloat(rateLimitRPSStr, 64)
	if err != nil {
		log.Printf("WARNING: Invalid RATE_LIMIT_RPS format '%s'. Using default 10. Error: %v", rateLimitRPSStr, err)
		rateLimitRPS = 10
	}

	maxBodySizeStr := getEnv("MAX_BODY_SIZE_BYTES", "10485760")
	maxBodySize, err := strconv.ParseInt(maxBodySizeStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_BODY_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxBodySizeStr, err)
		maxBodySize = 10 * 1024 * 1024
	}

	apiKey := getEnv("OPENAI_API_KEY", "")
	if apiKey == "" {
		log.Println("WARNING: OPENAI_API_KEY is not set. Agent calls to the model provider will fail.")
	}

	Cfg = &AppConfig{
		AppName:   getEnv("APP_NAME", "JomKira"),
		Port:      getEnv("PORT", "8000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:  apiKey,
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),

		SessionTTL:       sessionTTL,
		SessionMax:       getEnvAsInt("SESSION_MAX", 1000),
		InitialBalance:   initialBalance,
		AllowedOrigins:   splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8081")),
		MaxBodySizeBytes: maxBodySize,
	}

	log.Println("Application configuration loaded.")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid integer for %s: '%s'. Using default %d.", key, valueStr, fallback)
		return fallback
	}
	return value
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
