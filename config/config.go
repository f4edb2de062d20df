package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"taixiu/database"

	"github.com/shopspring/decimal"
)

// Config holds all engine configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string
	DBPool       database.PoolOptions

	// Round schedule
	RoundInterval     time.Duration // How long a round stays open before it is settled
	SchedulerTick     time.Duration // Cadence at which the scheduler checks the open round
	ScheduleWatchSpec string        // Cron spec for the schedule health check
	ScheduleGrace     time.Duration // Slack allowed past RoundInterval before alerting

	// Game economics
	PayoutMultiplier decimal.Decimal // Gross payout multiplier for a winning bet (> 1)
	HouseEdgeShare   decimal.Decimal // Fraction of a winner's edge retained by the house
	MinimumBet       int64
	BonusAmount      int64 // One-time credit for new accounts
	BonusMaxBet      int64 // Wager ceiling while the bonus flag is unset

	// Approval workflow
	WithdrawMinimum  int64
	WithdrawDailyCap int64 // Ceiling on approved withdrawals per account per UTC day, 0 disables
	AdminIDs        []int64 // Accounts allowed to decide requests and force rolls

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdmin reports whether the account is on the administrator allow-list
func (c *Config) IsAdmin(accountID int64) bool {
	for _, id := range c.AdminIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// Validate checks the game constants for values the engine cannot operate with
func (c *Config) Validate() error {
	if c.RoundInterval <= 0 {
		return fmt.Errorf("round interval must be positive, got %s", c.RoundInterval)
	}
	if c.SchedulerTick <= 0 {
		return fmt.Errorf("scheduler tick must be positive, got %s", c.SchedulerTick)
	}
	if !c.PayoutMultiplier.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("payout multiplier must be greater than 1, got %s", c.PayoutMultiplier)
	}
	if c.HouseEdgeShare.IsNegative() || c.HouseEdgeShare.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("house edge share must be within [0,1], got %s", c.HouseEdgeShare)
	}
	if c.MinimumBet < 1 {
		return fmt.Errorf("minimum bet must be at least 1, got %d", c.MinimumBet)
	}
	if c.BonusAmount < 0 || c.BonusMaxBet < 0 || c.WithdrawMinimum < 0 || c.WithdrawDailyCap < 0 {
		return fmt.Errorf("bonus and withdrawal amounts cannot be negative")
	}
	return nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := defaults()

	config.DatabaseURL = os.Getenv("DATABASE_URL")
	config.DatabaseName = os.Getenv("DATABASE_NAME")
	config.NATSServers = os.Getenv("NATS_SERVERS")
	config.ScheduleWatchSpec = getEnvWithDefault("SCHEDULE_WATCH_SPEC", config.ScheduleWatchSpec)
	config.OTelServiceName = getEnvWithDefault("OTEL_SERVICE_NAME", config.OTelServiceName)
	config.OTelExporterType = getEnvWithDefault("OTEL_EXPORTER_TYPE", config.OTelExporterType)
	config.OTelOTLPEndpoint = getEnvWithDefault("OTEL_OTLP_ENDPOINT", config.OTelOTLPEndpoint)
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", config.LogLevel)
	config.LogFormat = getEnvWithDefault("LOG_FORMAT", config.LogFormat)
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")

	// Durations are given in whole seconds
	if secs, ok := getEnvInt64("ROUND_INTERVAL_SECONDS"); ok {
		config.RoundInterval = time.Duration(secs) * time.Second
	}
	if secs, ok := getEnvInt64("SCHEDULER_TICK_SECONDS"); ok {
		config.SchedulerTick = time.Duration(secs) * time.Second
	}
	if secs, ok := getEnvInt64("SCHEDULE_GRACE_SECONDS"); ok {
		config.ScheduleGrace = time.Duration(secs) * time.Second
	}

	if v, ok := getEnvInt64("WITHDRAW_MIN"); ok {
		config.WithdrawMinimum = v
	}
	if v, ok := getEnvInt64("WITHDRAW_DAILY_CAP"); ok {
		config.WithdrawDailyCap = v
	}
	if v, ok := getEnvInt64("MIN_BET"); ok {
		config.MinimumBet = v
	}
	if v, ok := getEnvInt64("BONUS_AMOUNT"); ok {
		config.BonusAmount = v
	}
	if v, ok := getEnvInt64("BONUS_MAX_BET"); ok {
		config.BonusMaxBet = v
	}
	if v, ok := getEnvInt64("OTEL_EXPORT_INTERVAL_MS"); ok {
		config.OTelExportIntervalMillis = int(v)
	}
	if v, ok := getEnvInt64("DB_MAX_CONNS"); ok {
		config.DBPool.MaxConns = int32(v)
	}
	if v, ok := getEnvInt64("DB_MIN_CONNS"); ok {
		config.DBPool.MinConns = int32(v)
	}
	if secs, ok := getEnvInt64("DB_MAX_CONN_LIFETIME_SECONDS"); ok {
		config.DBPool.MaxConnLifetime = time.Duration(secs) * time.Second
	}
	if secs, ok := getEnvInt64("DB_HEALTH_CHECK_SECONDS"); ok {
		config.DBPool.HealthCheckPeriod = time.Duration(secs) * time.Second
	}
	if ms, ok := getEnvInt64("DB_STATEMENT_TIMEOUT_MS"); ok {
		config.DBPool.StatementTimeout = time.Duration(ms) * time.Millisecond
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		config.OTelEnabled = enabled == "true" || enabled == "1"
	}

	if raw := os.Getenv("PAYOUT_MULTIPLIER"); raw != "" {
		multiplier, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PAYOUT_MULTIPLIER %q: %w", raw, err)
		}
		config.PayoutMultiplier = multiplier
	}
	if raw := os.Getenv("HOUSE_EDGE_SHARE"); raw != "" {
		share, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HOUSE_EDGE_SHARE %q: %w", raw, err)
		}
		config.HouseEdgeShare = share
	}

	config.AdminIDs = parseIDList(os.Getenv("ADMIN_IDS"))

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// defaults returns the game constants of the reference deployment
func defaults() *Config {
	return &Config{
		RoundInterval:     60 * time.Second,
		SchedulerTick:     5 * time.Second,
		ScheduleWatchSpec: "@every 30s",
		ScheduleGrace:     30 * time.Second,
		PayoutMultiplier:  decimal.RequireFromString("1.97"),
		HouseEdgeShare:    decimal.RequireFromString("0.3"),
		MinimumBet:        1,
		BonusAmount:       10000,
		BonusMaxBet:       1000,
		WithdrawMinimum:   100000,
		WithdrawDailyCap:  1000000,
		DBPool: database.PoolOptions{
			MaxConns:          10,
			HealthCheckPeriod: 30 * time.Second,
			StatementTimeout:  30 * time.Second,
			ApplicationName:   "taixiu-engine",
		},
		OTelServiceName:          "taixiu-engine",
		OTelExporterType:         "console",
		OTelOTLPEndpoint:         "localhost:4317",
		OTelExportIntervalMillis: 60000,
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// parseIDList parses a comma-separated list of numeric account IDs, skipping invalid entries
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string) (int64, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	cfg := defaults()
	cfg.Environment = "test"
	cfg.AdminIDs = []int64{999999, 999991} // Default test admin IDs
	cfg.OTelExporterType = "none"
	return cfg
}
