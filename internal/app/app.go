// Package app wires the shared core (store, session manager, backend client
// and services) and runs it behind either the dashboard or the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/glycorisk/riskdash/internal/cli"
	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/config"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/reports"
	"github.com/glycorisk/riskdash/internal/services"
	"github.com/glycorisk/riskdash/internal/session"
	"github.com/glycorisk/riskdash/internal/storage"
	"github.com/glycorisk/riskdash/internal/telemetry"
	"github.com/glycorisk/riskdash/internal/web"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *storage.DB
	sessions    *session.Manager
	auth        services.AuthService
	patients    services.PatientService
	predictions services.PredictionService
	shutdown    func(context.Context) error
}

// NewApp opens the store and builds the services. serviceName labels the
// exported traces.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, serviceName string) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	sessions, err := session.NewManager(ctx, db, session.Options{
		Cookie: session.CookieConfig{
			Name:   cfg.CookieName,
			MaxAge: cfg.CookieMaxAge,
			Secure: cfg.CookieSecure,
		},
		Secret: cfg.StoreSecret,
		Logger: logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session init error: %w", err)
	}

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archiver init error: %w", err)
	}

	api := client.New(cfg.APIBaseURL, sessions,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		sessions:    sessions,
		auth:        services.NewAuthService(api, sessions, logger),
		patients:    services.NewPatientService(api, logger),
		predictions: services.NewPredictionService(api, archiver, logger),
		shutdown:    telemetry.Setup(ctx, serviceName, logger),
	}, nil
}

func newArchiver(ctx context.Context, cfg *config.Config) (reports.Archiver, error) {
	if cfg.ReportBucket == "" {
		return reports.NopArchiver{}, nil
	}
	return reports.NewS3Archiver(ctx, reports.S3Config{
		Bucket:    cfg.ReportBucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
}

// Close flushes traces and closes the store.
func (app *App) Close(ctx context.Context) error {
	if err := app.shutdown(ctx); err != nil {
		app.logger.Warn(ctx, "telemetry shutdown", "error", err)
	}
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// RunServer serves the dashboard until ctx is cancelled or the process is
// signalled.
func (app *App) RunServer(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	srv, err := web.New(web.Deps{
		Sessions:    app.sessions,
		Auth:        app.auth,
		Patients:    app.patients,
		Predictions: app.predictions,
		Store:       app.db,
		Logger:      app.logger,
	}, web.Options{
		CORSOrigins:  app.config.CORSOrigins,
		MaxBodyBytes: app.config.MaxBodyBytes,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx, app.config.ListenAddr)
}

// RunCLI runs the interactive client on in and out until the operator exits.
func (app *App) RunCLI(ctx context.Context, in io.Reader, out io.Writer) {
	cli.NewApp(cli.Deps{
		Sessions:    app.sessions,
		Auth:        app.auth,
		Patients:    app.patients,
		Predictions: app.predictions,
		Logger:      app.logger,
	}, in, out).Run(ctx)
}
