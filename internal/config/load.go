package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
// Nested keys use underscores, e.g. AITUTOR_AUTH_JWT_SECRET.
const EnvPrefix = "AITUTOR"

// keys without a default still need an explicit binding so that
// viper.Unmarshal picks them up from the environment.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"storage.endpoint",
	"storage.access_key",
	"storage.secret_key",
	"ratelimit.redis_url",
	"notify.amqp_url",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first; variables already set
// in the process environment are not overridden by it.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags on a loaded configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 16*1024*1024)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_seconds", 3600)
	v.SetDefault("auth.clock_skew_seconds", 0)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.pending_sweep_interval", 30*time.Second)
	v.SetDefault("task.stuck_job_age_minutes", 0)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cleanup_interval", 24*time.Hour)
	v.SetDefault("scheduler.retention_days", 30)

	v.SetDefault("storage.bucket", "syllabi")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.key_prefix", "syllabi")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.auth_requests", 3)
	v.SetDefault("ratelimit.auth_window", time.Minute)
	v.SetDefault("ratelimit.default_requests", 100)
	v.SetDefault("ratelimit.default_window", time.Hour)

	v.SetDefault("notify.exchange", "aitutor.jobs")
}
