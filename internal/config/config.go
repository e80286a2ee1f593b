package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	DatabaseURL  string
	JWTSecret    string
	DefaultBrand string
	CORSOrigins  []string
	Invoice      InvoiceConfig
	Settle       SettleConfig
	Checkout     CheckoutConfig
	Twilio       TwilioConfig
}

// InvoiceConfig controls the invoice number poller.
type InvoiceConfig struct {
	PollInterval time.Duration
	PollAttempts int
}

type SettleConfig struct {
	Concurrency int
}

// CheckoutConfig bounds how long an untouched wizard session is kept.
type CheckoutConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// TwilioConfig enables the SMS channel when all three values are set.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	interval, err := time.ParseDuration(getEnvOrViper("INVOICE_POLL_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("INVOICE_POLL_INTERVAL: %w", err)
	}
	attempts, err := strconv.Atoi(getEnvOrViper("INVOICE_POLL_ATTEMPTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("INVOICE_POLL_ATTEMPTS: %w", err)
	}
	concurrency, err := strconv.Atoi(getEnvOrViper("SETTLE_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("SETTLE_CONCURRENCY: %w", err)
	}
	idle, err := time.ParseDuration(getEnvOrViper("CHECKOUT_IDLE_TIMEOUT", "2h"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_IDLE_TIMEOUT: %w", err)
	}
	sweep, err := time.ParseDuration(getEnvOrViper("CHECKOUT_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_SWEEP_INTERVAL: %w", err)
	}

	cfg := &Config{
		Port:         getEnvOrViper("PORT", "8081"),
		Environment:  getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:     getEnvOrViper("LOG_LEVEL", "info"),
		DatabaseURL:  strings.TrimSpace(getEnvOrViper("DATABASE_URL", "")),
		JWTSecret:    getEnvOrViper("JWT_SECRET", "dev-secret-change-in-production"),
		DefaultBrand: strings.TrimSpace(getEnvOrViper("DEFAULT_BRAND", "")),
		CORSOrigins:  splitList(getEnvOrViper("CORS_ORIGINS", "http://localhost:5173")),
		Invoice: InvoiceConfig{
			PollInterval: interval,
			PollAttempts: attempts,
		},
		Settle: SettleConfig{Concurrency: concurrency},
		Checkout: CheckoutConfig{
			IdleTimeout:   idle,
			SweepInterval: sweep,
		},
		Twilio: TwilioConfig{
			AccountSID: strings.TrimSpace(getEnvOrViper("TWILIO_ACCOUNT_SID", "")),
			AuthToken:  strings.TrimSpace(getEnvOrViper("TWILIO_AUTH_TOKEN", "")),
			FromNumber: strings.TrimSpace(getEnvOrViper("TWILIO_FROM_NUMBER", "")),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Invoice.PollInterval <= 0 {
		return nil, fmt.Errorf("INVOICE_POLL_INTERVAL must be positive")
	}
	if cfg.Invoice.PollAttempts <= 0 {
		return nil, fmt.Errorf("INVOICE_POLL_ATTEMPTS must be positive")
	}
	if cfg.Settle.Concurrency <= 0 {
		return nil, fmt.Errorf("SETTLE_CONCURRENCY must be positive")
	}
	if cfg.Checkout.IdleTimeout <= 0 || cfg.Checkout.SweepInterval <= 0 {
		return nil, fmt.Errorf("CHECKOUT_IDLE_TIMEOUT and CHECKOUT_SWEEP_INTERVAL must be positive")
	}
	if cfg.IsProduction() && cfg.JWTSecret == "dev-secret-change-in-production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
