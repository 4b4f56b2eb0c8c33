package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.PeriodTxRetries)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, domain.DefaultRuleSettings(), cfg.Rules)
}

func TestRuleOverrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"RULES_ENFORCE_VALIDATION": false,
		"RULES_REQUIRE_APPROVAL":   true,
		"RULES_MAX_ENTRY_AMOUNT":   "10000.50",
		"LOG_LEVEL":                "debug",
		"CORS_ALLOWED_ORIGINS":     "http://a.test, http://b.test",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Rules.EnforceValidation)
	assert.True(t, cfg.Rules.RequireApproval)
	require.NotNil(t, cfg.Rules.MaxEntryAmount)
	assert.Equal(t, domain.Money(1000050), *cfg.Rules.MaxEntryAmount)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"RULES_MAX_ENTRY_AMOUNT": "-3",
		"LOG_LEVEL":              "chatty",
		"PERIOD_TX_RETRIES":      0,
	}))
	require.NoError(t, err)

	assert.Nil(t, cfg.Rules.MaxEntryAmount)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5, cfg.PeriodTxRetries)
}

func TestStorageDriverValidation(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]any{"STORAGE_DRIVER": "postgres"}))
	assert.Error(t, err, "postgres needs a URL")

	cfg, err := fromViper(newTestViper(map[string]any{"STORAGE_DRIVER": "postgres", "PGSQL_URL": "postgres://x"}))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)

	_, err = fromViper(newTestViper(map[string]any{"STORAGE_DRIVER": "mongo"}))
	assert.Error(t, err)
}
