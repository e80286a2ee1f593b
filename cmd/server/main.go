package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tailor-pos/api/internal/config"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/invoice"
	"github.com/tailor-pos/api/internal/notify"
	"github.com/tailor-pos/api/internal/router"
	"github.com/tailor-pos/api/internal/service"
	"github.com/tailor-pos/api/internal/ws"
	"go.uber.org/zap"
)

// stockCacheTTL bounds how stale a stock figure shown in the wizard can be.
const stockCacheTTL = 30 * time.Second

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply migrations and exit")
	migrationsDir := flag.String("migrations", "migrations", "migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if *migrateOnly {
		if err := database.Migrate(cfg.DatabaseURL, *migrationsDir); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
		return
	}

	logger.Info("Starting tailoring POS API",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	queries := database.New(pool)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	notifiers := notify.Multi{hub}
	if cfg.Twilio.Enabled() {
		client := notify.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
		notifiers = append(notifiers, notify.NewSMS(client.Api, cfg.Twilio.FromNumber, queries, logger))
		logger.Info("SMS notifications enabled")
	}

	poller := invoice.New(queries, notifiers, cfg.Invoice.PollInterval, cfg.Invoice.PollAttempts, logger)
	poller.Run()

	sessions := service.NewSessions()
	sweeper := service.NewSessionSweeper(sessions, cfg.Checkout.IdleTimeout, cfg.Checkout.SweepInterval, logger)
	sweeper.Run()

	cache := service.NewStockCache(stockCacheTTL)
	orchestrator := service.NewOrchestrator(
		pool,
		queries,
		func(db database.DBTX) service.CheckoutStore {
			return database.New(db)
		},
		sessions,
		cache,
		poller,
		notifiers,
		logger,
	)
	settler := service.NewSettler(queries, cache, cfg.Settle.Concurrency, logger)

	r := router.New(cfg, router.Deps{
		Queries:  queries,
		Pool:     pool,
		Hub:      hub,
		Checkout: orchestrator,
		Settler:  settler,
		Cache:    cache,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	logger.Info("Server started", zap.String("address", srv.Addr))

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := poller.Shutdown(shutdownCtx); err != nil {
		logger.Error("Invoice poller did not stop in time", zap.Error(err))
	}
	if err := sweeper.Shutdown(shutdownCtx); err != nil {
		logger.Error("Checkout sweeper did not stop in time", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zc.Level = level
	}
	return zc.Build()
}
