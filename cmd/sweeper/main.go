package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garimpo/backend/internal/adapters/database"
	"github.com/garimpo/backend/internal/config"
	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/internal/sweeper"
	pkgdb "github.com/garimpo/backend/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Postgres Connection Pool
	dbConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("Unable to parse database config", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("Unable to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if pingErr := pool.Ping(ctx); pingErr != nil {
		logger.Error("Unable to ping database", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Postgres Connected")

	// 2. Wire the expiry engine. Events produced here are written to the
	// outbox; the relay in the API process publishes them.
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.Database.LockTimeout)
	itemRepo := database.NewPostgresItemRepository(pool)
	offerRepo := database.NewPostgresOfferRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	engine := negotiation.NewService(txManager, itemRepo, offerRepo, outboxRepo)

	sw := sweeper.New(itemRepo, engine, cfg.Sweep.Interval, logger)

	logger.Info("Starting Expiration Sweeper...", "interval", cfg.Sweep.Interval.String())
	if err := sw.Run(ctx); err != nil {
		logger.Error("Sweeper failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Sweeper stopped")
}
