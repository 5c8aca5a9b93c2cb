package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"

	LedgerBackendMemory = "memory"
	LedgerBackendStore  = "store"
	LedgerBackendRedis  = "redis"
)

type Config struct {
	Host                  string `toml:"host"`
	Port                  int    `toml:"port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// Environment is the env section the config was read from.
	Environment   string `toml:"-"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// record store
	StoreBackend         string `toml:"store_backend"`
	SQLitePath           string `toml:"sqlite_path"`
	RedisHost            string `toml:"redis_host"`
	RedisPort            string `toml:"redis_port"`
	PostgresHost         string `toml:"postgres_host"`
	PostgresPort         string `toml:"postgres_port"`
	PostgresDBName       string `toml:"postgres_db_name"`
	StoreCacheSizeMB     int    `toml:"store_cache_size_mb"`
	StoreCacheTTLSeconds int    `toml:"store_cache_ttl_seconds"`
	// reminders
	LedgerBackend              string `toml:"ledger_backend"`
	Timezone                   string `toml:"timezone"`
	ReminderTickSeconds        int    `toml:"reminder_tick_seconds"`
	ReminderPassTimeoutSeconds int    `toml:"reminder_pass_timeout_seconds"`
	LedgerRetentionHours       int    `toml:"ledger_retention_hours"`
	NotifyRedisChannel         string `toml:"notify_redis_channel"`
	NotifyWebhookURL           string `toml:"notify_webhook_url"`
	// analytics
	AverageMode string `toml:"average_mode"`
	// stats api
	StatsRateLimitPerMin int      `toml:"stats_rate_limit_per_min"`
	AllowedOrigins       []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return fromToml(&t, env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendMemory
	}
	if c.LedgerBackend == "" {
		c.LedgerBackend = LedgerBackendMemory
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.ReminderTickSeconds <= 0 {
		c.ReminderTickSeconds = 60
	}
	if c.ReminderPassTimeoutSeconds <= 0 {
		c.ReminderPassTimeoutSeconds = 10
	}
	if c.LedgerRetentionHours <= 0 {
		c.LedgerRetentionHours = 48
	}
	if c.StoreCacheSizeMB < 0 {
		c.StoreCacheSizeMB = 0
	}
	if c.AverageMode == "" {
		c.AverageMode = "period_length"
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	case StoreBackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path must be set for the sqlite store backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_backend: %s", c.StoreBackend))
	}
	switch c.LedgerBackend {
	case LedgerBackendMemory, LedgerBackendStore, LedgerBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger_backend: %s", c.LedgerBackend))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone [%s]: %w", c.Timezone, err))
	}
	switch c.AverageMode {
	case "period_length", "days_with_data":
	default:
		errs = append(errs, fmt.Errorf("unknown average_mode: %s", c.AverageMode))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any configured component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.StoreBackend == StoreBackendRedis ||
		c.LedgerBackend == LedgerBackendRedis ||
		c.NotifyRedisChannel != "" ||
		c.StatsRateLimitPerMin > 0
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) ReminderTick() time.Duration {
	return time.Duration(c.ReminderTickSeconds) * time.Second
}

func (c *Config) ReminderPassTimeout() time.Duration {
	return time.Duration(c.ReminderPassTimeoutSeconds) * time.Second
}

func (c *Config) LedgerRetention() time.Duration {
	return time.Duration(c.LedgerRetentionHours) * time.Hour
}

func (c *Config) StoreCacheTTL() time.Duration {
	return time.Duration(c.StoreCacheTTLSeconds) * time.Second
}
