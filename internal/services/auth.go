package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/session"
)

var ErrNoToken = errors.New("login response carried no access token")

// AuthService signs the operator in and out.
//
// Contract:
//   - Login: exchange credentials for a token and store it through the
//     session manager (store and, when w is non-nil, cookie).
//   - Register: create the account, then log in with the same credentials.
//   - Logout: clear both copies of the credential.
//   - CurrentUser: fetch the signed-in user; never cached.
//   - Ping: probe backend health.
type AuthService interface {
	Login(ctx context.Context, w http.ResponseWriter, creds models.Credentials) (session.Credential, error)
	Register(ctx context.Context, w http.ResponseWriter, reg models.Registration) (session.Credential, error)
	Logout(ctx context.Context, w http.ResponseWriter) error
	CurrentUser(ctx context.Context) (models.User, error)
	Ping(ctx context.Context) error
}

type authService struct {
	api      client.API
	sessions *session.Manager
	log      logging.Logger
}

func NewAuthService(api client.API, sessions *session.Manager, l logging.Logger) AuthService {
	return &authService{api: api, sessions: sessions, log: l.With("module", "auth")}
}

func (a *authService) Login(ctx context.Context, w http.ResponseWriter, creds models.Credentials) (session.Credential, error) {
	tok, err := a.api.Login(ctx, creds)
	if err != nil {
		return session.Credential{}, err
	}
	if tok.AccessToken == "" {
		return session.Credential{}, ErrNoToken
	}

	cred, err := a.sessions.Set(ctx, w, tok.AccessToken)
	if err != nil {
		return session.Credential{}, fmt.Errorf("save session: %w", err)
	}

	a.log.Info(ctx, "logged in", "email", creds.Email)
	return cred, nil
}

func (a *authService) Register(ctx context.Context, w http.ResponseWriter, reg models.Registration) (session.Credential, error) {
	if reg.Role == "" {
		reg.Role = models.RolePatient
	}

	if _, err := a.api.Register(ctx, reg); err != nil {
		return session.Credential{}, err
	}
	a.log.Info(ctx, "registered", "email", reg.Email, "role", reg.Role)

	return a.Login(ctx, w, models.Credentials{Email: reg.Email, Password: reg.Password})
}

func (a *authService) Logout(ctx context.Context, w http.ResponseWriter) error {
	return a.sessions.Clear(ctx, w)
}

func (a *authService) CurrentUser(ctx context.Context) (models.User, error) {
	return a.api.Me(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.api.Health(ctx)
}
