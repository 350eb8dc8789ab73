// Package main implements the entry point for the AI tutor API server,
// which handles accounts, syllabus uploads, background test generation
// and search.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Script-GH/Ai-tutor/internal/config"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either applies a
// migration command or serves until SIGINT/SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"workers", cfg.Task.WorkerCount,
		"redis_rate_limit", cfg.RateLimit.RedisURL != "",
		"amqp_notify", cfg.Notify.AMQPURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			_ = db.Close()
		}()
		return postgres.Migrate(ctx, db, migrateCmd, log.With("component", "migrations"))
	}

	if err := postgres.Migrate(ctx, db, "up", log.With("component", "migrations")); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
