package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/garimpo/backend/internal/adapters/api"
	"github.com/garimpo/backend/internal/adapters/cache"
	"github.com/garimpo/backend/internal/adapters/database"
	"github.com/garimpo/backend/internal/adapters/events"
	"github.com/garimpo/backend/internal/config"
	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/internal/domain/users"
	"github.com/garimpo/backend/pkg/auth"
	pkgdb "github.com/garimpo/backend/pkg/database"
	pkgevents "github.com/garimpo/backend/pkg/events"
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

	// 2. Connect to RabbitMQ
	if err := cfg.RabbitMQ.Validate(); err != nil {
		logger.Error("Invalid RabbitMQ config", "error", err)
		os.Exit(1)
	}
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()
	logger.Info("RabbitMQ Connected")

	publisher, err := events.NewRabbitMQPublisher(amqpConn)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// 3. Load signing keys
	privateKey, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
	if err != nil {
		logger.Error("Failed to read private key", "error", err)
		os.Exit(1)
	}
	publicKey, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		logger.Error("Failed to read public key", "error", err)
		os.Exit(1)
	}
	signer, err := auth.NewSigner(privateKey, publicKey, "garimpo")
	if err != nil {
		logger.Error("Failed to create token signer", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories (Infrastructure Layer)
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.Database.LockTimeout)
	itemRepo := database.NewPostgresItemRepository(pool)
	offerRepo := database.NewPostgresOfferRepository(pool)
	userRepo := database.NewPostgresUserRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	// 5. Initialize Services (Domain Layer)
	userService := users.NewService(userRepo, signer)
	itemService := items.NewService(txManager, itemRepo, offerRepo)
	negotiationService := negotiation.NewService(txManager, itemRepo, offerRepo, outboxRepo)

	// 6. Optional listing cache
	var lister api.ItemLister = itemService
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed, serving listings uncached", "error", err)
		} else {
			logger.Info("Redis Connected")
			lister = &cache.ListingCache{
				Lister: itemService,
				Redis:  rdb,
				TTL:    cfg.Redis.CacheTTL,
				Logger: logger,
			}
		}
	}

	// 7. Initialize HTTP surface
	router := api.NewRouter(api.RouterConfig{
		AuthHandler:    api.NewAuthHandler(userService, logger),
		ItemHandler:    api.NewItemHandler(itemService, lister, logger),
		OfferHandler:   api.NewOfferHandler(negotiationService, logger),
		AuthMiddleware: auth.Middleware(signer),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Start Outbox Relay alongside the server
	outboxRelay := pkgevents.NewOutboxRelay(
		outboxRepo,
		publisher,
		txManager,
		cfg.Outbox.BatchSize,
		cfg.Outbox.Interval,
		events.Exchange,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting Outbox Relay...")
		return outboxRelay.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
