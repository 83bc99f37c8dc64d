package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/api/routes"
	"github.com/hmartinez-dev/tiendita-backend/internal/analytics"
	"github.com/hmartinez-dev/tiendita-backend/internal/backup"
	"github.com/hmartinez-dev/tiendita-backend/internal/notifications"
	"github.com/hmartinez-dev/tiendita-backend/internal/products"
	"github.com/hmartinez-dev/tiendita-backend/internal/sales"
	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/config"
	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
	"github.com/hmartinez-dev/tiendita-backend/pkg/metrics"
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
		Console:     cfg.App.IsDev(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := kv.Open(ctx, cfg.Storage, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to open durable storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing durable storage", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	stores := store.NewStores(backend, logg, metrics.NewStoreMetrics(registry))
	stores.Products.Load(ctx)
	stores.Sales.Load(ctx)
	stores.Notifications.Load(ctx)
	stores.BackupLog.Load(ctx)

	productService, err := products.NewService(stores.Products)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}
	salesService, err := sales.NewService(stores.Sales, stores.Products)
	if err != nil {
		logg.Error(ctx, "failed to create sales service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(stores.Notifications, notifications.Params{
		MaxRetained:   cfg.Notifications.MaxRetained,
		ReadRetention: cfg.Notifications.ReadRetention,
	})
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}
	analyticsService, err := analytics.NewService(stores.Sales, stores.Products)
	if err != nil {
		logg.Error(ctx, "failed to create analytics service", err)
		os.Exit(1)
	}
	backupService, err := backup.NewService(stores)
	if err != nil {
		logg.Error(ctx, "failed to create backup service", err)
		os.Exit(1)
	}

	threshold, err := decimal.NewFromString(cfg.Inventory.LowStockThreshold)
	if err != nil {
		logg.Error(ctx, "invalid low-stock threshold", err)
		os.Exit(1)
	}
	watcher, err := notifications.NewLowStockWatcher(stores.Products, notificationsService, threshold, logg)
	if err != nil {
		logg.Error(ctx, "failed to create low-stock watcher", err)
		os.Exit(1)
	}
	go watcher.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			backend,
			registry,
			productService,
			salesService,
			notificationsService,
			analyticsService,
			backupService,
		),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
