package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/elameta/quoteregistry/api/controllers"
	"github.com/elameta/quoteregistry/api/routes"
	"github.com/elameta/quoteregistry/internal/exports"
	"github.com/elameta/quoteregistry/internal/imports"
	"github.com/elameta/quoteregistry/internal/offers"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
	"github.com/elameta/quoteregistry/pkg/migrate"
	"github.com/elameta/quoteregistry/pkg/redis"
	"github.com/elameta/quoteregistry/pkg/storage/local"
)

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

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	mediaStore, err := local.New(ctx, cfg.Media.Root, logg)
	if err != nil {
		logg.Error(ctx, "failed to prepare media store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registryMetrics := metrics.NewRegistryMetrics(registry)

	opts := positions.Options{
		Listing:        cfg.Listing,
		Metrics:        registryMetrics,
		SuggestionsTTL: cfg.Redis.SuggestionsTTL,
		Media:          mediaStore,
	}

	var redisPinger redis.Pinger
	if cfg.Redis.Enabled() {
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
		opts.Cache = redisClient
		redisPinger = redisClient
	} else {
		logg.Info(ctx, "redis not configured, suggestions served from the database")
	}

	positionService, err := positions.NewService(positions.NewRepository(dbClient.DB()), dbClient, logg, opts)
	if err != nil {
		logg.Error(ctx, "failed to create position service", err)
		os.Exit(1)
	}

	var offerService offers.Service
	renderer, err := offers.NewRenderer(offers.ConfigFrom(cfg.Offer, mediaStore.Root()))
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "offer rendering disabled")
	} else {
		offerService, err = offers.NewService(positionService, renderer, logg, registryMetrics)
		if err != nil {
			logg.Error(ctx, "failed to create offer service", err)
			os.Exit(1)
		}
	}

	exportService, err := exports.NewService(positionService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create export service", err)
		os.Exit(1)
	}

	importer, err := imports.NewImporter(positionService, logg, registryMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create importer", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	var mediaPinger controllers.Pinger = mediaStore
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisPinger, mediaPinger, registry,
			positionService, offerService, exportService, importer),
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
