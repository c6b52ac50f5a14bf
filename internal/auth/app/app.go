package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/auth/http"
	"github.com/aussiebroadwan/accounts/internal/auth/metrics"
	"github.com/aussiebroadwan/accounts/internal/auth/notify"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	notifier service.Notifier

	// Services
	authService         *service.AuthService
	profileService      *service.ProfileService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// Option customises an Application before its services are built.
type Option func(*Application)

// WithNotifier replaces the notifier selected by Config.Notifier.
func WithNotifier(n service.Notifier) Option {
	return func(app *Application) { app.notifier = n }
}

// New creates an Application with all dependencies initialized. The
// database is pinged with backoff before migrations run.
func New(ctx context.Context, cfg Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: metrics.NewRegistry(),
	}
	app.metrics = metrics.New(app.registry)
	for _, w := range cfg.Warnings() {
		app.logger.Warn(w, "env", cfg.Env)
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		_ = app.db.Close()
		return fmt.Errorf("listen on %s: %w", app.server.Addr, err)
	}

	app.housekeepingService.Start()
	app.logger.Info("accounts service starting", "addr", ln.Addr().String(), "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown requested")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the HTTP server, the housekeeping worker and the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// Close releases the database of an Application that was never Run.
func (app *Application) Close() error {
	return app.db.Close()
}

// Migrate applies migrations and closes the store. Used by the migrate command.
func (app *Application) Migrate() error {
	defer func() { _ = app.db.Close() }()
	return app.db.ApplyMigrations()
}

func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := app.waitForDatabase(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// waitForDatabase pings with exponential backoff; a server database may
// still be starting when the service comes up.
func (app *Application) waitForDatabase(ctx context.Context) error {
	backoff := retry.WithMaxRetries(app.cfg.StartupRetries, retry.NewExponential(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := app.db.Ping(pingCtx); err != nil {
			app.logger.Warn("database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (app *Application) initServices() error {
	tokens, err := service.NewTokenIssuer(app.cfg.TokenConfig())
	if err != nil {
		return err
	}

	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	if app.notifier == nil {
		if app.notifier, err = app.newNotifier(); err != nil {
			return err
		}
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Hasher:   cryptox.NewPasswordHasher(pepper),
		Tokens:   tokens,
		Notifier: app.notifier,
		Policy:   app.cfg.TwoFactorPolicy(),
		Metrics:  app.metrics,
	}
	app.profileService = &service.ProfileService{Store: app.db, Metrics: app.metrics}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) newNotifier() (service.Notifier, error) {
	if app.cfg.Notifier != "smtp" {
		return notify.LogNotifier{}, nil
	}

	n, err := notify.NewSMTPNotifier(app.cfg.SMTP, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrConfiguration, err)
	}
	return n, nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService.Tokens,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	credential, account, system := app.cfg.RateLimits()
	router.Limits = httpapi.RateLimits{Credential: credential, Account: account, System: system}
	router.AuthService = app.authService
	router.ProfileService = app.profileService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
