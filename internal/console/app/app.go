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

	clinicservice "github.com/dentalops/clinicgate/internal/clinic/service"
	clinicstore "github.com/dentalops/clinicgate/internal/clinic/store"
	clinicmemory "github.com/dentalops/clinicgate/internal/clinic/store/drivers/memory"
	clinicsqlite "github.com/dentalops/clinicgate/internal/clinic/store/drivers/sqlite"
	"github.com/dentalops/clinicgate/internal/console/authclient"
	httpapi "github.com/dentalops/clinicgate/internal/console/http"
	"github.com/dentalops/clinicgate/internal/console/routes"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the admin console gateway with all its
// dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	metrics      *metrics.Metrics
	sessionStore session.Store
	sessions     *session.Managers
	auth         *authclient.Client

	clinicDB      clinicstore.Store
	clinicService *clinicservice.Service

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clinicgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initSessionStore(); err != nil {
		return nil, err
	}

	app.auth = authclient.New(cfg.IdentityURL, app.sessionStore, app.logger)
	app.sessions = session.NewManagers(app.sessionStore, app.auth, app.logger)

	if err := app.initClinicDatabase(); err != nil {
		_ = app.sessionStore.Close()
		return nil, err
	}
	app.clinicService = &clinicservice.Service{Store: app.clinicDB}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"identity_url", app.cfg.IdentityURL,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.sessions.Close()

	if err := app.sessionStore.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	if err := app.clinicDB.Close(); err != nil {
		app.logger.Error("error closing clinic database", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) initSessionStore() error {
	switch app.cfg.SessionStore {
	case "memory":
		app.sessionStore = session.NewMemoryStore(app.cfg.SessionTTL)
		return nil
	case "redis":
		st, err := session.NewRedisStore(app.cfg.RedisURL, app.cfg.SessionTTL, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.sessionStore = st
		return nil
	default:
		return fmt.Errorf("unknown session store driver %q", app.cfg.SessionStore)
	}
}

func (app *Application) initClinicDatabase() error {
	switch app.cfg.ClinicDriver {
	case "memory":
		app.clinicDB = clinicmemory.NewStore()
		return nil
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.ClinicDatabaseFile)
		db, err := clinicsqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize clinic database: %w", err)
		}
		app.clinicDB = db

		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply clinic database migrations: %w", err)
		}

		app.logger.Info("clinic database migrations applied successfully")
		return nil
	default:
		return fmt.Errorf("unknown clinic store driver %q", app.cfg.ClinicDriver)
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		routes.Default(),
		app.sessionStore,
		app.sessions,
		app.auth,
		app.metrics,
		BuildVersion,
		app.cfg.SecureCookies,
		app.cfg.SessionTTL,
		app.logger,
	)
	router.ClinicService = app.clinicService
	router.PagesUpstream = app.cfg.PagesUpstream
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
