// Package web serves the dashboard: server-rendered pages behind the session
// guard, backed by the shared services.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/glycorisk/riskdash/internal/guard"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/services"
	"github.com/glycorisk/riskdash/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pinger is the durable store as seen by the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators every handler needs.
type Deps struct {
	Sessions    *session.Manager
	Auth        services.AuthService
	Patients    services.PatientService
	Predictions services.PredictionService
	Store       Pinger
	Logger      logging.Logger
}

type Options struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Policy       guard.Policy
}

type Server struct {
	sessions    *session.Manager
	auth        services.AuthService
	patients    services.PatientService
	predictions services.PredictionService
	store       Pinger
	log         logging.Logger
	policy      guard.Policy
	engine      *gin.Engine
}

// New builds the router. A zero Policy means guard.DefaultPolicy.
func New(d Deps, opts Options) (*Server, error) {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if opts.Policy.LoginPath == "" {
		opts.Policy = guard.DefaultPolicy()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:3000"}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		sessions:    d.Sessions,
		auth:        d.Auth,
		patients:    d.Patients,
		predictions: d.Predictions,
		store:       d.Store,
		log:         d.Logger.With("module", "web"),
		policy:      opts.Policy,
	}
	s.engine = s.setupRouter(tmpl, opts)
	return s, nil
}

func (s *Server) setupRouter(tmpl *template.Template, opts Options) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		requestLogger(s.log),
		gin.Recovery(),
		limitBodySize(opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		guard.Middleware(s.policy, s.sessions.Present),
	)

	router.GET("/", guard.Root(s.policy, s.sessions.Present))
	router.GET("/healthz", s.healthz)
	router.GET("/readyz", s.readyz)

	router.GET("/login", s.loginPage)
	router.POST("/login", s.login)
	router.GET("/register", s.registerPage)
	router.POST("/register", s.register)
	router.POST("/logout", s.logout)

	dash := router.Group("/dashboard", s.requireSession)
	dash.GET("", s.dashboard)
	dash.GET("/patients", s.listPatients)
	dash.POST("/patients", s.createPatient)
	dash.POST("/patients/:id", s.updatePatient)
	dash.POST("/patients/:id/delete", s.deletePatient)
	dash.GET("/predict", s.predictPage)
	dash.POST("/predict", s.predict)
	dash.GET("/history", s.history)
	dash.GET("/history/:id/report", s.downloadReport)

	return router
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler is the engine wrapped with request tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "riskdash")
}

// Run serves Handler on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to 10 seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.log.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "store": "ok", "backend": "ok"}

	if s.store != nil {
		if err := s.store.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["store"] = fmt.Sprintf("unhealthy: %v", err)
		}
	}
	if err := s.auth.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["backend"] = fmt.Sprintf("unhealthy: %v", err)
	}

	c.JSON(status, body)
}
