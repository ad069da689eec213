// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BURGERMASTER_SERVER_PORT
const EnvPrefix = "BURGERMASTER"

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	AI         AIConfig         `mapstructure:"ai"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// StorageConfig selects and configures the state store
type StorageConfig struct {
	Driver     string         `mapstructure:"driver"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	KeyPrefix  string         `mapstructure:"key_prefix"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Database        string        `mapstructure:"database"`
	ReadReplicas    []string      `mapstructure:"read_replicas"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Addrs        []string      `mapstructure:"addrs"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig selects the cache backend for AI search results
type CacheConfig struct {
	Driver          string        `mapstructure:"driver"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// AIConfig contains AI provider configuration
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	SearchModel       string        `mapstructure:"search_model"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
	BreakerFailures   int           `mapstructure:"breaker_failures"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"`
}

// CatalogConfig points at an optional external blend catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig contains HTTP rate limiting configuration for AI routes
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requests_per_min"`
	BurstSize      int  `mapstructure:"burst_size"`
}

// MonitoringConfig contains metrics and tracing configuration
type MonitoringConfig struct {
	MetricsEnabled bool    `mapstructure:"metrics_enabled"`
	MetricsPath    string  `mapstructure:"metrics_path"`
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Loader reads configuration and can watch the config file for changes
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader for configPath. An empty path searches for
// config.yaml in the usual locations.
func NewLoader(configPath string) *Loader {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/blendcalc")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is commonly exported under the provider's own names.
	_ = v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY", "API_KEY")

	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// Load reads, decodes and validates the configuration
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ConfigFile returns the file in use, if any
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch re-reads the config file whenever it changes and reports the
// result. Invalid edits are reported as errors and otherwise ignored.
func (l *Loader) Watch(onChange func(cfg *Config, err error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Burger Master Pro")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 10<<20) // 10MB, recipe photos
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_compression", true)

	// Storage defaults
	v.SetDefault("storage.driver", StorageSQLite)
	v.SetDefault("storage.sqlite_path", "data/blendcalc.db")
	v.SetDefault("storage.key_prefix", "blendcalc:")
	v.SetDefault("storage.postgres.database", "blendcalc")
	v.SetDefault("storage.postgres.max_open_conns", 10)
	v.SetDefault("storage.postgres.max_idle_conns", 5)
	v.SetDefault("storage.postgres.conn_max_lifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// Cache defaults
	v.SetDefault("cache.driver", StorageMemory)
	v.SetDefault("cache.cleanup_interval", "5m")

	// AI defaults
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash-exp")
	v.SetDefault("ai.search_model", "gemini-2.0-flash")
	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.cache_ttl", "6h")
	v.SetDefault("ai.requests_per_minute", 30)
	v.SetDefault("ai.burst", 5)
	v.SetDefault("ai.breaker_failures", 5)
	v.SetDefault("ai.breaker_cooldown", "1m")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 20)
	v.SetDefault("rate_limit.burst_size", 5)

	// Monitoring defaults
	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.tracing_enabled", false)
	v.SetDefault("monitoring.sampling_rate", 0.1)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	switch c.App.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("app.log_format must be json or console, got %q", c.App.LogFormat)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for the postgres driver")
		}
	case StorageRedis:
		if len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("redis.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case StorageMemory:
	case StorageRedis:
		if len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("redis.addrs is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache.driver %q", c.Cache.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}

	if c.Monitoring.SamplingRate < 0 || c.Monitoring.SamplingRate > 1 {
		return fmt.Errorf("monitoring.sampling_rate must be between 0 and 1")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
