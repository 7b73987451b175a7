package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wichananm65/recommendation-console/internal/validation"
)

type Config struct {
	Addr string `env:"CONSOLE_ADDR" validate:"required"`

	APIURL     string        `env:"RECOMMENDATIONS_API_URL" validate:"required,url"`
	APIKey     string        `env:"RECOMMENDATIONS_API_KEY"`
	APITimeout time.Duration `env:"RECOMMENDATIONS_API_TIMEOUT"`
	// Offline serves the console from an in-memory store instead of the API.
	Offline bool `env:"RECOMMENDATIONS_OFFLINE"`

	DatabaseURL  string `env:"DATABASE_URL"`
	HistoryLimit int    `env:"HISTORY_LIMIT" validate:"min=1,max=500"`

	JWTSecret       string `env:"CONSOLE_JWT_SECRET"`
	OperatorKeyHash string `env:"CONSOLE_OPERATOR_KEY_HASH"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" validate:"required"`

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error disabled off"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json console"`
}

func defaults() Config {
	return Config{
		Addr:             ":3000",
		APIURL:           "http://localhost:8080/api",
		APITimeout:       10 * time.Second,
		HistoryLimit:     50,
		CORSAllowOrigins: "*",
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Load reads the environment on top of the defaults. Call godotenv.Load first
// if a .env file should be honoured.
func Load() (Config, error) {
	cfg := defaults()

	setString(&cfg.Addr, "CONSOLE_ADDR")
	setString(&cfg.APIURL, "RECOMMENDATIONS_API_URL")
	setString(&cfg.APIKey, "RECOMMENDATIONS_API_KEY")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "CONSOLE_JWT_SECRET")
	setString(&cfg.OperatorKeyHash, "CONSOLE_OPERATOR_KEY_HASH")
	setString(&cfg.CORSAllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if v := os.Getenv("RECOMMENDATIONS_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("RECOMMENDATIONS_API_TIMEOUT: invalid duration %q", v)
		}
		cfg.APITimeout = d
	}
	if v := os.Getenv("RECOMMENDATIONS_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("RECOMMENDATIONS_OFFLINE: %w", err)
		}
		cfg.Offline = b
	}
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("HISTORY_LIMIT: %w", err)
		}
		cfg.HistoryLimit = n
	}

	if err := validation.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret != "" && cfg.OperatorKeyHash == "" {
		return Config{}, fmt.Errorf("config: CONSOLE_OPERATOR_KEY_HASH is required when CONSOLE_JWT_SECRET is set")
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
