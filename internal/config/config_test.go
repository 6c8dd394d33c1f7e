package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_PATH", "PORT", "LOG_LEVEL", "DEFAULT_CURRENCY", "DEFAULT_TAX_PERCENTAGE"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "./data/bills.db", cfg.DBPath)
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, ":8080", cfg.Addr())
		require.Equal(t, "info", cfg.LogLevel)
		require.Equal(t, "MYR", cfg.DefaultCurrency)
		require.True(t, decimal.NewFromInt(6).Equal(cfg.DefaultTaxPercentage))
	})

	t.Run("loads all config from env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_PATH", "/tmp/bills.db")
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("DEFAULT_CURRENCY", " sgd ")
		t.Setenv("DEFAULT_TAX_PERCENTAGE", "9")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "/tmp/bills.db", cfg.DBPath)
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, "SGD", cfg.DefaultCurrency)
		require.True(t, decimal.NewFromInt(9).Equal(cfg.DefaultTaxPercentage))
	})

	t.Run("accepts fractional tax rate", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEFAULT_TAX_PERCENTAGE", "8.25")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "8.25", cfg.DefaultTaxPercentage.String())
	})

	t.Run("collects every validation error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "eighty")
		t.Setenv("LOG_LEVEL", "verbose")
		t.Setenv("DEFAULT_CURRENCY", "RM")
		t.Setenv("DEFAULT_TAX_PERCENTAGE", "-1")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "PORT must be a number")
		require.Contains(t, err.Error(), "LOG_LEVEL")
		require.Contains(t, err.Error(), "DEFAULT_CURRENCY")
		require.Contains(t, err.Error(), "DEFAULT_TAX_PERCENTAGE must not be negative")
	})

	t.Run("rejects unparseable tax rate", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEFAULT_TAX_PERCENTAGE", "six")

		_, err := Load()
		require.ErrorContains(t, err, "DEFAULT_TAX_PERCENTAGE must be a decimal")
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "70000")

		_, err := Load()
		require.ErrorContains(t, err, "PORT 70000 is out of range")
	})
}
