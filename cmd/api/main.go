package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/basket-engine/api/controllers"
	"github.com/angelmondragon/basket-engine/api/routes"
	"github.com/angelmondragon/basket-engine/internal/basket"
	"github.com/angelmondragon/basket-engine/internal/catalog"
	"github.com/angelmondragon/basket-engine/internal/pricing"
	sessionsvc "github.com/angelmondragon/basket-engine/internal/session"
	"github.com/angelmondragon/basket-engine/pkg/auth/session"
	"github.com/angelmondragon/basket-engine/pkg/config"
	"github.com/angelmondragon/basket-engine/pkg/db"
	"github.com/angelmondragon/basket-engine/pkg/env"
	"github.com/angelmondragon/basket-engine/pkg/instance"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/metrics"
	"github.com/angelmondragon/basket-engine/pkg/migrate"
	"github.com/angelmondragon/basket-engine/pkg/redis"
	"github.com/angelmondragon/basket-engine/pkg/security"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var dbPinger controllers.Pinger
	var baskets basket.RepositoryFactory
	switch cfg.Storage.NormalizedBackend() {
	case config.StorageBackendDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		dbPinger = dbClient
		baskets = basket.SQLFactory(dbClient)
	case config.StorageBackendMemory:
		baskets = basket.NewMemoryFactory().For
	default:
		baskets = basket.RedisFactory(redisClient, cfg.Storage.BasketTTL)
	}

	products, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	basketMetrics := metrics.NewBasketMetrics(registry)

	credential, err := security.NewCredential(cfg.Auth, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to prepare demo credential", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	sessionService, err := sessionsvc.NewService(sessionsvc.ServiceParams{
		Credential:     credential,
		SessionManager: sessionManager,
		Baskets:        baskets,
		Catalog:        products,
		Pricer:         pricing.NewEngine(),
		JWTConfig:      cfg.JWT,
		Logger:         logg,
		Recorder:       basketMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"backend":  cfg.Storage.NormalizedBackend(),
		"products": products.Len(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbPinger, redisClient, sessionManager, sessionService, products, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
