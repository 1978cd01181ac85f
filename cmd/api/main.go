package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ammargroup/storefront-backend/api/routes"
	"github.com/ammargroup/storefront-backend/internal/admins"
	authsvc "github.com/ammargroup/storefront-backend/internal/auth"
	"github.com/ammargroup/storefront-backend/internal/cleanup"
	ordersvc "github.com/ammargroup/storefront-backend/internal/orders"
	productsvc "github.com/ammargroup/storefront-backend/internal/products"
	"github.com/ammargroup/storefront-backend/internal/users"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/mail"
	"github.com/ammargroup/storefront-backend/pkg/metrics"
	"github.com/ammargroup/storefront-backend/pkg/migrate"
	"github.com/ammargroup/storefront-backend/pkg/redis"
	"github.com/ammargroup/storefront-backend/pkg/storage/local"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	assetStore, err := local.New(context.Background(), cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare asset store", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(
		admins.NewRepository(dbClient.DB()),
		users.NewRepository(dbClient.DB()),
		cfg.JWT,
		cfg.Password,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := productsvc.NewService(
		productsvc.NewRepository(dbClient.DB()),
		dbClient,
		assetStore,
		cleanup.NewRepository(dbClient.DB()),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	mailer, err := mail.New(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}
	orderService, err := ordersvc.NewService(mailer, cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, assetStore,
			authService, productService, orderService,
			httpMetrics, registry,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
