// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the server.
type Config struct {
	DBPath               string
	Port                 int
	LogLevel             string
	DefaultCurrency      string
	DefaultTaxPercentage decimal.Decimal
}

// Load reads configuration from environment variables, after loading a
// .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "./data/bills.db"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_CURRENCY", "MYR"))),
	}

	var errs []string

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("PORT must be a number: %v", err))
	}
	cfg.Port = port

	tax, err := decimal.NewFromString(getEnv("DEFAULT_TAX_PERCENTAGE", "6"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("DEFAULT_TAX_PERCENTAGE must be a decimal: %v", err))
	}
	cfg.DefaultTaxPercentage = tax

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// validate checks the parsed values and returns every problem found.
func (c *Config) validate() []string {
	var errs []string

	if c.DBPath == "" {
		errs = append(errs, "DB_PATH must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q must be one of debug, info, warn, error", c.LogLevel))
	}
	if !isCurrencyCode(c.DefaultCurrency) {
		errs = append(errs, fmt.Sprintf("DEFAULT_CURRENCY %q must be a 3-letter code", c.DefaultCurrency))
	}
	if c.DefaultTaxPercentage.IsNegative() {
		errs = append(errs, "DEFAULT_TAX_PERCENTAGE must not be negative")
	}

	return errs
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
