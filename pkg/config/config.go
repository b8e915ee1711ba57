package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Slot backends selectable through SLOT_BACKEND.
const (
	SlotBackendMemory   = "memory"
	SlotBackendPostgres = "postgres"
	SlotBackendRedis    = "redis"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	SlotBackend string `mapstructure:"SLOT_BACKEND" validate:"required,oneof=memory postgres redis"`
	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required_if=SlotBackend postgres"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required_if=SlotBackend redis"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL" validate:"gte=0"`
	StoreNamespace string        `mapstructure:"STORE_NAMESPACE" validate:"required"`
	RoutesFile     string        `mapstructure:"ROUTES_FILE"`
	StaticDir      string        `mapstructure:"STATIC_DIR"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST" validate:"gte=4,lte=31"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=1"`

	AsynqConcurrency int           `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`
	PurgeInterval    time.Duration `mapstructure:"PURGE_INTERVAL" validate:"gte=0"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"SLOT_BACKEND",
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"SESSION_SECRET",
	"SESSION_TTL",
	"STORE_NAMESPACE",
	"ROUTES_FILE",
	"STATIC_DIR",
	"BCRYPT_COST",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"ASYNQ_CONCURRENCY",
	"PURGE_INTERVAL",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SLOT_BACKEND", SlotBackendMemory)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("STORE_NAMESPACE", "default")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("PURGE_INTERVAL", "1h")
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
		"SESSION_TTL":      &c.SessionTTL,
		"PURGE_INTERVAL":   &c.PurgeInterval,
	}
	for key, dst := range durations {
		s := v.GetString(key)
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

// IsDevelopment reports whether the process runs in a local or test environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "test"
}
