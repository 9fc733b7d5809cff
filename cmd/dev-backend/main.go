package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/backend/httpx"
	"github.com/jcmexdev/delivery-storefront/internal/backend/inventory"
	"github.com/jcmexdev/delivery-storefront/internal/backend/orders"
	"github.com/jcmexdev/delivery-storefront/internal/backend/sitestatus"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/cache"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/config"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/telemetry"
)

func main() {
	cfg := config.LoadServer()
	logger := telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if cfg.OTelEndpoint != "" {
		var err error
		shutdown, err = telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint)
		if err != nil {
			slog.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var store cache.Cache
	if cfg.RedisAddr != "" {
		store = cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := cache.Ping(pingCtx, store)
		cancel()
		if err != nil {
			slog.Error("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("REDIS_ADDR not set, using in-process cache")
		store = cache.NewMemoryCache(cfg.ServiceName)
	}
	if cfg.OperatorToken == "" {
		slog.Warn("OPERATOR_TOKEN not set, operator endpoints are open")
	}

	handler := httpx.NewHandler(
		inventory.New(inventory.DefaultItems(), logger),
		orders.NewStore(),
		sitestatus.NewService(store),
		store,
		cfg.IdempotencyTTL,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(handler, httpx.RouterOptions{OperatorToken: cfg.OperatorToken, ServiceName: cfg.ServiceName}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down dev backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("dev backend running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
