package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/infra/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	shutdown := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if endpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""); endpoint != "" {
		var err error
		shutdown, err = telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "storefront"), endpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialise tracer: %v\n", err)
			shutdown = telemetry.NoopShutdown
		}
	}

	err := cli.NewRootCommand().ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = shutdown(shutdownCtx)
	cancel()
	stop()

	if err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
