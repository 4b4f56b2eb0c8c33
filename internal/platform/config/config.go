package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Port               string
	IsProduction       bool
	LogLevel           slog.Level
	StorageDriver      string
	DatabaseURL        string
	DBMaxConns         int32
	SQLitePath         string
	EnableDBCheck      bool
	RunMigrations      bool
	SeedChart          bool
	RateLimit          string
	CORSAllowedOrigins []string
	PeriodTxRetries    int

	// Rules are the settings used until an update is persisted.
	Rules domain.RuleSettings
}

func setDefaults(v *viper.Viper) {
	defaults := domain.DefaultRuleSettings()

	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", DriverMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PGSQL_MAX_CONNS", 10)
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("SEED_CHART", true)
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("PERIOD_TX_RETRIES", 5)

	v.SetDefault("RULES_ENFORCE_VALIDATION", defaults.EnforceValidation)
	v.SetDefault("RULES_ALLOW_BACKDATED", defaults.AllowBackdatedEntries)
	v.SetDefault("RULES_MAX_ENTRY_AMOUNT", "")
	v.SetDefault("RULES_REQUIRE_APPROVAL", defaults.RequireApproval)
	v.SetDefault("RULES_CHECK_DUPLICATES", defaults.CheckDuplicateEntries)
	v.SetDefault("RULES_ALLOW_NEGATIVE_INVENTORY", defaults.AllowNegativeInventory)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		StorageDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DatabaseURL:   v.GetString("PGSQL_URL"),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		SeedChart:     v.GetBool("SEED_CHART"),
		RateLimit:     v.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		slog.Warn("Invalid LOG_LEVEL, defaulting to info", slog.String("value", v.GetString("LOG_LEVEL")))
		cfg.LogLevel = slog.LevelInfo
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.DBMaxConns = v.GetInt32("PGSQL_MAX_CONNS")
	if cfg.DBMaxConns < 1 {
		slog.Warn("Invalid PGSQL_MAX_CONNS, defaulting to 10", slog.Int("value", int(cfg.DBMaxConns)))
		cfg.DBMaxConns = 10
	}

	cfg.PeriodTxRetries = v.GetInt("PERIOD_TX_RETRIES")
	if cfg.PeriodTxRetries < 1 {
		slog.Warn("Invalid PERIOD_TX_RETRIES, defaulting to 5", slog.Int("value", cfg.PeriodTxRetries))
		cfg.PeriodTxRetries = 5
	}

	cfg.Rules = domain.RuleSettings{
		EnforceValidation:      v.GetBool("RULES_ENFORCE_VALIDATION"),
		AllowBackdatedEntries:  v.GetBool("RULES_ALLOW_BACKDATED"),
		RequireApproval:        v.GetBool("RULES_REQUIRE_APPROVAL"),
		CheckDuplicateEntries:  v.GetBool("RULES_CHECK_DUPLICATES"),
		AllowNegativeInventory: v.GetBool("RULES_ALLOW_NEGATIVE_INVENTORY"),
	}
	if raw := strings.TrimSpace(v.GetString("RULES_MAX_ENTRY_AMOUNT")); raw != "" {
		ceiling, err := parsePositiveMoney(raw)
		if err != nil {
			slog.Warn("Invalid RULES_MAX_ENTRY_AMOUNT, leaving it unset", slog.String("value", raw), slog.String("error", err.Error()))
		} else {
			cfg.Rules.MaxEntryAmount = &ceiling
		}
	}

	return cfg, nil
}

func parsePositiveMoney(raw string) (domain.Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	m, err := domain.MoneyFromDecimal(d)
	if err != nil {
		return 0, err
	}
	if m <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return m, nil
}
