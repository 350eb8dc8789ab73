package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Script-GH/Ai-tutor/internal/api"
	"github.com/Script-GH/Ai-tutor/internal/config"
	"github.com/Script-GH/Ai-tutor/internal/events"
	"github.com/Script-GH/Ai-tutor/internal/platform/postgres"
	"github.com/Script-GH/Ai-tutor/internal/platform/rabbitmq"
	"github.com/Script-GH/Ai-tutor/internal/platform/ratelimit"
	"github.com/Script-GH/Ai-tutor/internal/platform/s3blob"
	"github.com/Script-GH/Ai-tutor/internal/service/auth"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

// rateLimitSweepInterval is how often idle in-process limiter buckets are dropped.
const rateLimitSweepInterval = 10 * time.Minute

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore      store.UserStore
	syllabusStore  store.SyllabusStore
	analyticsStore store.AnalyticsStore
	blobStore      store.BlobStore

	// Services
	jwtService  auth.JWTService
	credentials auth.CredentialService

	// Background jobs
	jobs      api.JobQueue
	runner    *task.Runner
	scheduler *task.Scheduler

	// Notifications
	hub       *api.NotificationHub
	publisher *rabbitmq.Publisher

	// Rate limiting; nil limiters disable it.
	authLimiter    ratelimit.Limiter
	defaultLimiter ratelimit.Limiter
	redisClient    *redis.Client
	stopSweepers   context.CancelFunc
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime", cfg.Auth.TokenLifetime(),
		"clock_skew", cfg.Auth.ClockSkew())

	app.userStore = postgres.NewPostgresUserStore(db)
	app.syllabusStore = postgres.NewPostgresSyllabusStore(db)
	app.analyticsStore = postgres.NewPostgresAnalyticsStore(db)
	jobStore := postgres.NewPostgresJobStore(db)
	resultStore := postgres.NewPostgresTestResultStore(db)

	app.credentials = auth.NewCredentialService(app.userStore, db,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)

	app.blobStore, err = s3blob.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	logger.Info("blob store initialized",
		"bucket", cfg.Storage.Bucket,
		"custom_endpoint", cfg.Storage.Endpoint != "")

	emitter := events.NewInMemoryEventEmitter(logger)
	app.hub = api.NewNotificationHub(logger)
	emitter.RegisterHandler(app.hub)

	if cfg.Notify.AMQPURL != "" {
		app.publisher, err = rabbitmq.Dial(cfg.Notify.AMQPURL, cfg.Notify.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect job event publisher: %w", err)
		}
		emitter.RegisterHandler(app.publisher)
		logger.Info("job events published over AMQP", "exchange", cfg.Notify.Exchange)
	}

	app.runner = task.NewRunner(jobStore, runnerConfig(cfg.Task), emitter, logger)
	app.runner.Register(task.KindGenerateTest, task.NewGenerateTestBody(app.syllabusStore, resultStore))
	app.runner.Register(task.KindCleanupSyllabi,
		task.NewCleanupBody(app.syllabusStore, app.blobStore, cfg.Scheduler.Retention()))
	app.jobs = app.runner

	if cfg.Scheduler.Enabled {
		app.scheduler = task.NewScheduler(app.runner, logger)
		if err := app.scheduler.Schedule(task.KindCleanupSyllabi, nil, cfg.Scheduler.CleanupInterval); err != nil {
			return nil, fmt.Errorf("failed to schedule cleanup: %w", err)
		}
	}

	if err := app.setupRateLimiters(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// runnerConfig maps the task configuration onto the runner defaults.
func runnerConfig(cfg config.TaskConfig) task.RunnerConfig {
	rc := task.DefaultRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	rc.PendingSweepInterval = cfg.PendingSweepInterval
	rc.StuckJobAge = cfg.StuckJobAge()
	return rc
}

// setupRateLimiters picks the Redis limiter when a URL is configured and
// the in-process limiter otherwise.
func (app *application) setupRateLimiters(ctx context.Context) error {
	cfg := app.config.RateLimit
	if !cfg.Enabled {
		app.logger.Warn("rate limiting disabled")
		return nil
	}

	if cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect rate limit store: %w", err)
		}
		app.redisClient = client
		app.authLimiter = ratelimit.NewRedisLimiter(client, "ratelimit", cfg.AuthRequests, cfg.AuthWindow)
		app.defaultLimiter = ratelimit.NewRedisLimiter(client, "ratelimit", cfg.DefaultRequests, cfg.DefaultWindow)
		app.logger.Info("rate limiting backed by redis")
		return nil
	}

	authLimiter := ratelimit.NewMemoryLimiter(cfg.AuthRequests, cfg.AuthWindow)
	defaultLimiter := ratelimit.NewMemoryLimiter(cfg.DefaultRequests, cfg.DefaultWindow)
	sweepCtx, cancel := context.WithCancel(context.Background())
	go authLimiter.RunSweeper(sweepCtx, rateLimitSweepInterval)
	go defaultLimiter.RunSweeper(sweepCtx, rateLimitSweepInterval)

	app.authLimiter = authLimiter
	app.defaultLimiter = defaultLimiter
	app.stopSweepers = cancel
	app.logger.Info("rate limiting held in process")
	return nil
}

// Run starts the background workers and the HTTP server, and blocks until
// ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}
	if app.scheduler != nil {
		app.scheduler.Start(ctx)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.hub != nil {
		app.hub.Close()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing AMQP publisher", "error", err)
		}
	}
	if app.stopSweepers != nil {
		app.stopSweepers()
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
