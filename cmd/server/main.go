package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "inventory-manager/internal/adapters/web"
	"inventory-manager/internal/app"
	"inventory-manager/internal/cache"
	"inventory-manager/internal/config"
	"inventory-manager/internal/core"
	"inventory-manager/internal/db"
	"inventory-manager/internal/events"
	"inventory-manager/internal/logger"
	"inventory-manager/internal/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "inventory-manager"

func main() {
	cfg := config.Load()
	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.Logger.Level)

	if err := cfg.Validate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracer(serviceName, cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	pool, err := db.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	redisClient := cache.NewClient(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := events.NewPublisher(cfg.Kafka)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create event publisher")
	}
	defer publisher.Close()

	companies := core.NewCompanyService(pool)
	ledger := core.NewStockLedger(pool)

	svc := app.NewAppService(app.Deps{
		DB:           pool,
		Companies:    companies,
		CompanyCache: cache.NewCompanyCache(redisClient, companies, cfg.Redis.TTL),
		Warehouses:   core.NewWarehouseService(pool),
		Catalog:      core.NewCatalogService(pool),
		Ledger:       ledger,
		Customers:    core.NewCustomerService(pool),
		Suppliers:    core.NewSupplierService(pool),
		Orders:       core.NewOrderService(pool, ledger, nil),
		Publisher:    publisher,
		Metrics:      app.NewMetrics(prometheus.DefaultRegisterer),
	})

	handler := webAdapter.NewHandler(svc, webAdapter.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.JWT.Secret,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(handler, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Server.Port).
			Str("environment", cfg.Server.AppEnv).
			Bool("cache", redisClient != nil).
			Bool("events", len(cfg.Kafka.Brokers) > 0).
			Bool("tracing", cfg.Tracing.Enabled).
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}
	logger.Logger.Info().Msg("Server stopped")
}
