package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/config"
	"github.com/jcmexdev/delivery-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/site"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/infra/persistence/sqlite"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/infra/pipeline"
)

// app is the wiring shared by every command invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *pipeline.Client
	db     *sqlite.DB
	out    *OutputFormatter
}

func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Session != "" {
		cfg.Storage.Session = opts.Session
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := telemetry.NewLogger(cmd.ErrOrStderr(), telemetry.ParseLevel(cfg.Log.Level))

	var tokens pipeline.TokenSource
	switch {
	case cfg.Auth.Token != "":
		tokens = pipeline.StaticToken(cfg.Auth.Token)
	case cfg.Auth.TokenFile != "":
		tokens = pipeline.FileToken(cfg.Auth.TokenFile)
	}

	client, err := pipeline.NewClient(cfg.Backend.URL,
		pipeline.WithTokenSource(tokens),
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(cfg.Backend.Timeout),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid backend url", err)
	}

	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot open local storage", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		db:     db,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close local storage", "error", err)
	}
}

// gate returns a site gate refreshed from the server. A failed refresh
// leaves the gate ONLINE so the server stays the final judge.
func (a *app) gate(ctx context.Context) *site.Gate {
	g := site.NewGate(a.client, entity.SiteAvailability{})
	if _, err := g.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "could not refresh site status", "error", err)
	}
	return g
}

// cartStore opens the session cart. guard may be nil.
func (a *app) cartStore(ctx context.Context, guard cart.Guard) (*cart.Store, error) {
	opts := []cart.StoreOption{
		cart.WithRepository(a.db.Carts(), a.cfg.Storage.Session),
		cart.WithLogger(a.logger),
	}
	if guard != nil {
		opts = append(opts, cart.WithGuard(guard))
	}
	store, err := cart.Open(ctx, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot load cart", err)
	}
	return store, nil
}

// fail renders err and returns an ExitError carrying its exit code.
// Cancellations exit non-zero without any output.
func (a *app) fail(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			_ = a.out.Error("", exitErr.Error())
			exitErr.Reported = true
		}
		return exitErr
	}
	reported := func(code int, msg string) error {
		e := WrapExitError(code, msg, err)
		e.Reported = true
		return e
	}
	var offline *site.OfflineError
	if errors.As(err, &offline) {
		_ = a.out.Error("OFFLINE", offline.Message)
		return reported(ExitFailure, "ordering is closed")
	}
	var reqErr *entity.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Kind == entity.KindCancelled {
			return reported(ExitFailure, string(reqErr.Kind))
		}
		_ = a.out.Error(string(reqErr.Kind), reqErr.Error())
		return reported(ExitFailure, string(reqErr.Kind))
	}
	_ = a.out.Error("", err.Error())
	return reported(ExitFailure, "command failed")
}

// run opens the app, calls fn and routes its error through fail.
func run(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		_ = out.Error("", err.Error())
		return &ExitError{Code: ExitCommandError, Message: "startup failed", Err: err, Reported: true}
	}
	defer a.Close()

	if err := fn(cmd.Context(), a); err != nil {
		return a.fail(err)
	}
	return nil
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
