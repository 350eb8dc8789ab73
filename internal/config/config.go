package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Task      TaskConfig      `mapstructure:"task"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"   validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// MaxUploadBytes bounds the multipart body accepted by the upload route.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeSeconds int    `mapstructure:"token_lifetime_seconds" validate:"required,gt=0"`
	// ClockSkewSeconds is the leeway applied when checking exp/nbf claims.
	ClockSkewSeconds int `mapstructure:"clock_skew_seconds" validate:"gte=0"`
	BCryptCost       int `mapstructure:"bcrypt_cost"        validate:"gte=4,lte=31"`
}

// TaskConfig contains settings for the background job runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
	// PendingSweepInterval is how often PENDING jobs that missed the in-memory
	// hand-off are dispatched again.
	PendingSweepInterval time.Duration `mapstructure:"pending_sweep_interval" validate:"gt=0"`
	// StuckJobAgeMinutes enables requeueing of jobs left in PROCESSING.
	// Zero disables it.
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"gte=0"`
}

// SchedulerConfig controls the periodic cleanup job.
type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
	RetentionDays   int           `mapstructure:"retention_days"   validate:"gt=0"`
}

// StorageConfig configures the S3-compatible blob store.
type StorageConfig struct {
	Bucket    string `mapstructure:"bucket"     validate:"required"`
	Region    string `mapstructure:"region"     validate:"required"`
	Endpoint  string `mapstructure:"endpoint"   validate:"omitempty,url"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig configures request throttling per client address.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// RedisURL selects the shared Redis limiter. Empty means in-process limits.
	RedisURL        string        `mapstructure:"redis_url"       validate:"omitempty,url"`
	AuthRequests    int           `mapstructure:"auth_requests"   validate:"gt=0"`
	AuthWindow      time.Duration `mapstructure:"auth_window"     validate:"gt=0"`
	DefaultRequests int           `mapstructure:"default_requests" validate:"gt=0"`
	DefaultWindow   time.Duration `mapstructure:"default_window"  validate:"gt=0"`
}

// NotifyConfig configures the optional AMQP job event publisher.
type NotifyConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"  validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange"`
}

// TokenLifetime returns the configured access token lifetime.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeSeconds) * time.Second
}

// ClockSkew returns the configured validation leeway.
func (c AuthConfig) ClockSkew() time.Duration {
	return time.Duration(c.ClockSkewSeconds) * time.Second
}

// StuckJobAge returns the PROCESSING age after which a job is requeued, or zero.
func (c TaskConfig) StuckJobAge() time.Duration {
	return time.Duration(c.StuckJobAgeMinutes) * time.Minute
}

// Retention returns the syllabus retention window.
func (c SchedulerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
