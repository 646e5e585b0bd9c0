package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/orgconsole/internal/adapter/fsm"
	otelAdapter "github.com/neomorfeo/orgconsole/internal/adapter/otel"
	"github.com/neomorfeo/orgconsole/internal/adapter/remote"
	riverAdapter "github.com/neomorfeo/orgconsole/internal/adapter/river"
	"github.com/neomorfeo/orgconsole/internal/adapter/sqlite"
	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/config"

	handler "github.com/neomorfeo/orgconsole/internal/adapter/http"
)

const serviceName = "orgconsole"

func main() {
	if err := run(); err != nil {
		slog.Error("orgconsole exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	if cfg.TelemetryEnabled {
		providers, err := otelAdapter.Setup(ctx, otelAdapter.ConfigFromEnv())
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				slog.Error("telemetry shutdown", "error", err)
			}
		}()
	}

	// --- Adapters (out) ---
	db, err := otelAdapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store := otelAdapter.NewTracingIdentityStore(repo)

	purgers := riverAdapter.Purgers{repo}
	queue, err := riverAdapter.Setup(ctx, db, riverAdapter.SessionExpiry{
		Store:    &purgers,
		TTL:      cfg.SessionTTL,
		Interval: cfg.PurgeInterval,
	})
	if err != nil {
		return fmt.Errorf("job queue: %w", err)
	}
	publisher := otelAdapter.NewTracingPublisher(riverAdapter.NewPublisher(queue))

	client, err := remote.New(cfg.RemoteAPIURL, cfg.RemoteTimeout)
	if err != nil {
		return fmt.Errorf("remote api: %w", err)
	}
	gateway, err := otelAdapter.NewTracingGateway(client)
	if err != nil {
		return fmt.Errorf("remote api instrumentation: %w", err)
	}

	// --- Application ---
	wizards := app.NewWizardService(gateway, publisher, fsm.New())
	services := handler.Services{
		Sessions:  app.NewSessionService(store).OnLogout(wizards.DiscardOwnedBy),
		Wizards:   wizards,
		Directory: app.NewDirectoryService(gateway),
		Tasks:     app.NewTaskService(gateway),
	}

	// Wizards expire with the identity sessions; the list is complete
	// before the queue starts.
	purgers = append(purgers, wizards)
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("starting job queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			slog.Error("job queue shutdown", "error", err)
		}
	}()

	// --- Adapters (in) ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("orgconsole listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

// newRouter builds the chi router with tracing and request logging and
// mounts the console API on it.
func newRouter(services handler.Services) http.Handler {
	router := chi.NewMux()
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig(serviceName, "0.1.0"))
	handler.Register(api, services)
	return router
}
