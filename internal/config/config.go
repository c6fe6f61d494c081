// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, Load returns an error and the
// process exits before serving traffic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	ProviderGoogle = "google"
	ProviderSerper = "serper"
)

type Config struct {
	Port     int
	LogLevel string

	DBHost     string
	DBPort     string
	DBUsername string
	DBPassword string
	DBDatabase string

	RedisAddr string

	AccessTokenSecret string
	AccessTokenTTL    time.Duration

	OpenAIAPIKey string
	OpenAIModel  string

	SearchProvider string
	GoogleAPIKey   string
	GoogleCSEID    string
	SerperAPIKey   string

	MaxSearchResults  int
	SearchPageSize    int
	PageRetryAttempts int
	TranslatorTimeout time.Duration
	ProviderTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		LogLevel:          envOr("LOG_LEVEL", "info"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            envOr("DB_PORT", "5432"),
		DBUsername:        os.Getenv("DB_USERNAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBDatabase:        os.Getenv("DB_DATABASE"),
		RedisAddr:         envOr("REDIS_ADDR", "localhost:6379"),
		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    30 * time.Minute,
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOr("OPENAI_MODEL", "gpt-4"),
		SearchProvider:    envOr("SEARCH_PROVIDER", ProviderGoogle),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GoogleCSEID:       os.Getenv("GOOGLE_CSE_ID"),
		SerperAPIKey:      os.Getenv("SERPER_API_KEY"),
		MaxSearchResults:  100,
		SearchPageSize:    10,
		PageRetryAttempts: 3,
		TranslatorTimeout: 30 * time.Second,
		ProviderTimeout:   30 * time.Second,
	}

	if s := os.Getenv("PORT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("PORT must be a positive integer, got %q", s)
		}
		cfg.Port = v
	}

	if cfg.DBHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	if cfg.DBUsername == "" {
		return nil, fmt.Errorf("DB_USERNAME is required")
	}
	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.AccessTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	switch cfg.SearchProvider {
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" || cfg.GoogleCSEID == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY and GOOGLE_CSE_ID are required when SEARCH_PROVIDER=google")
		}
	case ProviderSerper:
		if cfg.SerperAPIKey == "" {
			return nil, fmt.Errorf("SERPER_API_KEY is required when SEARCH_PROVIDER=serper")
		}
	default:
		return nil, fmt.Errorf("SEARCH_PROVIDER must be %q or %q, got %q", ProviderGoogle, ProviderSerper, cfg.SearchProvider)
	}

	if s := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", s)
		}
		cfg.AccessTokenTTL = time.Duration(v) * time.Minute
	}

	if s := os.Getenv("MAX_SEARCH_RESULTS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("MAX_SEARCH_RESULTS must be a positive integer, got %q", s)
		}
		cfg.MaxSearchResults = v
	}

	if s := os.Getenv("SEARCH_PAGE_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SEARCH_PAGE_SIZE must be a positive integer, got %q", s)
		}
		cfg.SearchPageSize = v
	}

	if s := os.Getenv("PAGE_RETRY_ATTEMPTS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("PAGE_RETRY_ATTEMPTS must be a positive integer, got %q", s)
		}
		cfg.PageRetryAttempts = v
	}

	if s := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be a positive integer, got %q", s)
		}
		cfg.ProviderTimeout = time.Duration(v) * time.Second
	}

	if s := os.Getenv("TRANSLATOR_TIMEOUT_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("TRANSLATOR_TIMEOUT_SECONDS must be a positive integer, got %q", s)
		}
		cfg.TranslatorTimeout = time.Duration(v) * time.Second
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
