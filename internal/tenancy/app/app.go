package app

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

	httpapi "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/postgres"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/metricx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const serviceName = "tenancy"

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application holds the wired service and its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	provider *metricx.Provider
	metrics  *metricx.Metrics

	accessTokens      *service.AccessTokens
	refreshTokens     *service.RefreshTokens
	sessionService    *service.SessionService
	userService       *service.UserService
	tenantService     *service.TenantService
	rolesService      *service.RolesService
	permissionService *service.PermissionService
	housekeeping      *service.Housekeeping

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and wires every dependency. Nothing is listening yet.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMetrics(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until SIGINT/SIGTERM or a server failure.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("tenancy service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeeping.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, then releases the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tenancy service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if app.provider != nil {
		if err := app.provider.Shutdown(ctx); err != nil {
			app.logger.Error("error shutting down metrics", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tenancy service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	if app.cfg.UsesPostgres() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.Open(ctx, app.cfg.DatabaseURL)
	} else {
		db, err = sqlite.Open(app.cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "postgres", app.cfg.UsesPostgres())
	return nil
}

func (app *Application) initMetrics() error {
	if !app.cfg.MetricsEnabled {
		return nil
	}

	provider, err := metricx.NewPrometheus()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	m, err := metricx.New(provider.Meter(serviceName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return fmt.Errorf("failed to register instruments: %w", err)
	}

	app.provider = provider
	app.metrics = m
	return nil
}

func (app *Application) initServices() error {
	var err error

	app.accessTokens, err = service.NewAccessTokens([]byte(app.cfg.AccessTokenSecret), time.Now)
	if err != nil {
		return fmt.Errorf("failed to initialize access tokens: %w", err)
	}
	app.refreshTokens, err = service.NewRefreshTokens([]byte(app.cfg.RefreshTokenSecret), app.db, time.Now)
	if err != nil {
		return fmt.Errorf("failed to initialize refresh tokens: %w", err)
	}

	app.sessionService = &service.SessionService{
		Store:         app.db,
		AccessTokens:  app.accessTokens,
		RefreshTokens: app.refreshTokens,
		Metrics:       app.metrics,
	}
	app.userService = &service.UserService{Store: app.db, HashAlgorithm: app.cfg.HashAlgorithm}
	app.tenantService = &service.TenantService{Store: app.db}
	app.rolesService = &service.RolesService{Store: app.db}
	app.permissionService = &service.PermissionService{Store: app.db}

	app.housekeeping = service.NewHousekeeping(app.db, app.logger, app.metrics, app.cfg.HousekeepingInterval, time.Now)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.accessTokens,
		app.cfg.RateLimits,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.TenantService = app.tenantService
	router.RolesService = app.rolesService
	router.PermissionService = app.permissionService
	router.Metrics = app.metrics
	if app.provider != nil {
		router.MetricsHandler = app.provider.Handler()
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
