package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/prediction"
	"github.com/glycorisk/riskdash/internal/services"
	"github.com/glycorisk/riskdash/internal/session"
)

// Deps are the services the CLI drives.
type Deps struct {
	Sessions    *session.Manager
	Auth        services.AuthService
	Patients    services.PatientService
	Predictions services.PredictionService
	Logger      logging.Logger
	// ReportDir receives downloaded reports. Defaults to "reports".
	ReportDir string
}

type App struct {
	sessions    *session.Manager
	auth        services.AuthService
	patients    services.PatientService
	predictions services.PredictionService
	log         logging.Logger
	reportDir   string

	reader *bufio.Reader
	out    io.Writer

	// userName is shown in the prompt once known.
	userName string
}

func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.ReportDir == "" {
		d.ReportDir = "reports"
	}
	return &App{
		sessions:    d.Sessions,
		auth:        d.Auth,
		patients:    d.Patients,
		predictions: d.Predictions,
		log:         d.Logger.With("module", "cli"),
		reportDir:   d.ReportDir,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to riskdash CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

// isLoggedIn reports whether the store holds a usable credential.
func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.sessions.Get(ctx)
	return err == nil
}

func (a *App) getStatus(ctx context.Context) string {
	_, err := a.sessions.Get(ctx)
	switch {
	case err == nil && a.userName != "":
		return fmt.Sprintf("(%s)", a.userName)
	case err == nil:
		return "(logged in)"
	case errors.Is(err, session.ErrExpired):
		return "(session expired)"
	default:
		return ""
	}
}

// fail prints the operator-facing line for err and returns err.
func (a *App) fail(ctx context.Context, err error, fallback string) error {
	a.log.Debug(ctx, "command failed", "error", err)
	fmt.Fprintln(a.out, "Error:", message(err, fallback))
	return err
}

func message(err error, fallback string) string {
	var verr *prediction.ValidationError
	var ierr *inputError
	switch {
	case errors.As(err, &verr), errors.As(err, &ierr):
		return err.Error()
	case errors.Is(err, services.ErrPatientCodeRequired):
		return "Patient code is required"
	case errors.Is(err, services.ErrDownloadInProgress):
		return "This report is already downloading"
	case errors.Is(err, session.ErrNoCredential), errors.Is(err, session.ErrExpired):
		return "Please login first"
	}
	return client.Message(err, fallback)
}

// inputError is an answer the CLI itself rejected.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func badInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func (a *App) setUser(u models.User) {
	a.userName = u.Email
	if u.FullName != "" {
		a.userName = u.FullName
	}
}
