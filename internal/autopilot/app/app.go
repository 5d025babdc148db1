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

	httpapi "github.com/agencydesk/autopilot/internal/autopilot/http"
	"github.com/agencydesk/autopilot/internal/autopilot/insights"
	"github.com/agencydesk/autopilot/internal/autopilot/mailer"
	"github.com/agencydesk/autopilot/internal/autopilot/obs"
	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/agencydesk/autopilot/internal/autopilot/renderer"
	"github.com/agencydesk/autopilot/internal/autopilot/service"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/internal/autopilot/store/drivers/sqlite"
	"github.com/agencydesk/autopilot/pkg/jwtx"
	"github.com/agencydesk/autopilot/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the autopilot service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	sessions *jwtx.HS256
	registry *platform.Registry

	authService         *service.AuthService
	stateService        *service.StateService
	connectService      *service.ConnectService
	clientService       *service.ClientService
	reportService       *service.ReportService
	schedulerService    *service.SchedulerService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "autopilot",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("AUTOPILOT_SESSION_SECRET is required")
	}
	app.sessions = jwtx.NewHS256([]byte(cfg.SessionSecret), cfg.Issuer)

	obs.Init()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.registry = platform.NewRegistry(nil, platform.Defaults(
		cfg.MetaClientID, cfg.MetaClientSecret,
		cfg.LinkedInClientID, cfg.LinkedInClientSecret,
	)...)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.schedulerService.Start()

	app.logger.Info("autopilot starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down autopilot...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop workers after the server so in-flight requests can still reach
	// the store.
	app.schedulerService.Stop()
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("autopilot stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.sessions,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.stateService = &service.StateService{
		Store: app.db,
		TTL:   app.cfg.StateTTL,
	}

	app.connectService = &service.ConnectService{
		Store:    app.db,
		States:   app.stateService,
		Registry: app.registry,
		BaseURL:  app.cfg.BaseURL,
	}

	app.clientService = &service.ClientService{Store: app.db}

	app.reportService = &service.ReportService{
		Store:    app.db,
		Insights: insights.New(nil),
		Renderer: renderer.New(app.cfg.RendererURL, app.cfg.RendererAPIKey, nil),
		Mailer:   mailer.New(app.cfg.MailerURL, app.cfg.MailerAPIKey, app.cfg.MailerFrom, nil),
		Logger:   app.logger,
	}

	app.schedulerService = service.NewSchedulerService(
		app.db,
		app.reportService,
		app.logger,
		app.cfg.SchedulerInterval,
	)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.LoginURL = app.cfg.LoginURL
	router.AppURL = app.cfg.AppURL
	router.AuthService = app.authService
	router.ClientService = app.clientService
	router.ConnectService = app.connectService
	router.ReportService = app.reportService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
