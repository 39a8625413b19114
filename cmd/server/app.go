package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	fb "firebase.google.com/go/v4"
	"github.com/phrazzld/account-api/internal/api"
	apiMiddleware "github.com/phrazzld/account-api/internal/api/middleware"
	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/gateway"
	"github.com/phrazzld/account-api/internal/identity"
	"github.com/phrazzld/account-api/internal/metrics"
	"github.com/phrazzld/account-api/internal/platform/firebase"
	"github.com/phrazzld/account-api/internal/platform/firestore"
	"github.com/phrazzld/account-api/internal/platform/postgres"
	"github.com/phrazzld/account-api/internal/redact"
	"github.com/phrazzld/account-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Collector

	handler      *api.AccountHandler
	loginLimiter *apiMiddleware.RateLimiter
	resetLimiter *apiMiddleware.RateLimiter
	closers      []func() error
}

// newApplication connects to the identity provider and the configured
// profile store, then assembles the handlers around them.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	fbApp, err := firebase.NewApp(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}

	provider, err := newIdentityProvider(ctx, cfg, fbApp, logger)
	if err != nil {
		return nil, err
	}

	profiles, closer, err := newProfileStore(ctx, cfg, fbApp, logger)
	if err != nil {
		return nil, err
	}

	app, err := assembleApplication(cfg, logger, provider, profiles)
	if err != nil {
		_ = closer()
		return nil, err
	}
	app.closers = append(app.closers, closer)

	logger.Info("application initialized successfully")
	return app, nil
}

func newIdentityProvider(
	ctx context.Context,
	cfg *config.Config,
	fbApp *fb.App,
	logger *slog.Logger,
) (identity.Provider, error) {
	authClient, err := firebase.NewAuthClient(ctx, fbApp)
	if err != nil {
		return nil, err
	}

	passwords, err := firebase.NewToolkitClient(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}

	logger.Info("identity provider initialized",
		slog.String("project_id", cfg.Firebase.ProjectID),
		slog.Bool("check_revoked", cfg.Firebase.CheckRevoked))

	return firebase.NewProvider(authClient, passwords, cfg.Firebase.CheckRevoked, logger), nil
}

// newProfileStore opens the configured backend. The returned func releases
// its connections.
func newProfileStore(
	ctx context.Context,
	cfg *config.Config,
	fbApp *fb.App,
	logger *slog.Logger,
) (store.ProfileStore, func() error, error) {
	switch cfg.Store.Backend {
	case "firestore":
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		logger.Info("profile store initialized",
			slog.String("backend", "firestore"),
			slog.String("collection", cfg.Store.Collection))
		return firestore.NewProfileStore(client, cfg.Store.Collection, logger), client.Close, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		logger.Info("profile store initialized", slog.String("backend", "postgres"))
		closer := func() error {
			pool.Close()
			return nil
		}
		return postgres.NewPostgresProfileStore(pool, logger), closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// assembleApplication builds the gateway, handlers and rate limiters on top
// of an identity provider and profile store.
func assembleApplication(
	cfg *config.Config,
	logger *slog.Logger,
	provider identity.Provider,
	profiles store.ProfileStore,
) (*application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	gw, err := gateway.New(provider, profiles, cfg.Gateway, collector, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  collector,
		handler:  api.NewAccountHandler(gw, logger),
		loginLimiter: apiMiddleware.NewRateLimiter(apiMiddleware.RateLimiterConfig{
			Route: "/login",
			Rate:  apiMiddleware.PerMinute(cfg.RateLimit.LoginPerMinute),
			Burst: cfg.RateLimit.Burst,
		}, collector),
		resetLimiter: apiMiddleware.NewRateLimiter(apiMiddleware.RateLimiterConfig{
			Route: "/reset_password",
			Rate:  apiMiddleware.PerMinute(cfg.RateLimit.ResetPerMinute),
			Burst: cfg.RateLimit.Burst,
		}, collector),
	}
	return app, nil
}

// Run serves HTTP until ctx is canceled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	err := app.startHTTPServer(ctx, app.setupRouter())
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.loginLimiter.Stop()
	app.resetLimiter.Stop()

	var errs []error
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error closing profile store", slog.String("error", redact.Error(err)))
	}

	app.logger.Info("application shutdown completed")
}
