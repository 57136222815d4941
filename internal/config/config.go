// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Source drivers.
const (
	SourceDriverREST     = "rest"     // query the backend REST API per search
	SourceDriverPostgres = "postgres" // query the synced listing mirror
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Search   SearchConfig   `mapstructure:"search"`
	Session  SessionConfig  `mapstructure:"session"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Env         string `mapstructure:"env"` // development, staging, production
	Port        int    `mapstructure:"port"`
	Debug       bool   `mapstructure:"debug"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	LogLevel     string        `mapstructure:"log_level"` // silent, error, warn, info
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SourceConfig selects the property data source and configures upstreams.
type SourceConfig struct {
	Driver         string   `mapstructure:"driver"` // rest, postgres
	CandidateLimit int      `mapstructure:"candidate_limit"`
	SyncLimit      int      `mapstructure:"sync_limit"`
	BaaS           Endpoint `mapstructure:"baas"`
	PartnerFeed    Endpoint `mapstructure:"partner_feed"`
}

// Endpoint holds a single upstream's configuration.
type Endpoint struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// SearchConfig holds search request settings.
type SearchConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	Debounce       time.Duration `mapstructure:"debounce"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig bounds the interactive search sessions kept in memory.
type SessionConfig struct {
	MaxSessions  int           `mapstructure:"max_sessions"`
	IdleTTL      time.Duration `mapstructure:"idle_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

// SyncConfig holds background listing sync settings.
type SyncConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for caching and locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port pair.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ProviderTTL time.Duration `mapstructure:"provider_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects settings the services cannot run with.
func (c *Config) validate() error {
	switch c.Source.Driver {
	case SourceDriverREST, SourceDriverPostgres:
	default:
		return fmt.Errorf("source.driver must be %q or %q, got %q",
			SourceDriverREST, SourceDriverPostgres, c.Source.Driver)
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session.max_sessions must be positive, got %d", c.Session.MaxSessions)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "property-match-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.cors_origins", "*")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "property_match")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.log_level", "warn")

	// Source defaults
	v.SetDefault("source.driver", SourceDriverPostgres)
	v.SetDefault("source.candidate_limit", 500)
	v.SetDefault("source.sync_limit", 500)

	v.SetDefault("source.baas.enabled", true)
	v.SetDefault("source.baas.base_url", "http://localhost:8081")
	v.SetDefault("source.baas.api_key", "")
	v.SetDefault("source.baas.timeout", "10s")
	v.SetDefault("source.baas.retry.max_attempts", 3)
	v.SetDefault("source.baas.retry.wait_time", "1s")
	v.SetDefault("source.baas.retry.max_wait_time", "5s")
	v.SetDefault("source.baas.circuit_breaker.max_requests", 3)
	v.SetDefault("source.baas.circuit_breaker.interval", "60s")
	v.SetDefault("source.baas.circuit_breaker.timeout", "30s")
	v.SetDefault("source.baas.circuit_breaker.failure_ratio", 0.5)

	v.SetDefault("source.partner_feed.enabled", true)
	v.SetDefault("source.partner_feed.base_url", "http://localhost:8082")
	v.SetDefault("source.partner_feed.api_key", "")
	v.SetDefault("source.partner_feed.timeout", "10s")
	v.SetDefault("source.partner_feed.retry.max_attempts", 3)
	v.SetDefault("source.partner_feed.retry.wait_time", "1s")
	v.SetDefault("source.partner_feed.retry.max_wait_time", "5s")
	v.SetDefault("source.partner_feed.circuit_breaker.max_requests", 3)
	v.SetDefault("source.partner_feed.circuit_breaker.interval", "60s")
	v.SetDefault("source.partner_feed.circuit_breaker.timeout", "30s")
	v.SetDefault("source.partner_feed.circuit_breaker.failure_ratio", 0.5)

	// Search defaults
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.debounce", "300ms")
	v.SetDefault("search.request_timeout", "15s")

	// Session defaults
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.reap_interval", "1m")

	// Sync defaults
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.interval", "5m")
	v.SetDefault("sync.on_startup", true)
	v.SetDefault("sync.timeout", "30s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.provider_ttl", "5m")
	v.SetDefault("cache.key_prefix", "property-match")
}
