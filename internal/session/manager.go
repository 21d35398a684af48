package session

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/glycorisk/riskdash/internal/cryptox"
	"github.com/glycorisk/riskdash/internal/dbx"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/repositories/metadata"
	"github.com/glycorisk/riskdash/internal/storage"
)

const (
	keyToken     = "access_token"
	keyExpiresAt = "access_token_expires_at"
	keySalt      = "store_salt"
	keyVerifier  = "store_verifier"
)

// CookieConfig describes the browser copy of the credential.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Options configure a Manager. Zero values get defaults.
type Options struct {
	Cookie CookieConfig
	// Secret seals the token at rest when non-empty.
	Secret string
	Logger logging.Logger
	Now    func() time.Time
}

// Manager is the single authority over the session credential. It is safe
// for concurrent use: its fields never change after NewManager and every
// store write runs in its own transaction.
type Manager struct {
	db     *storage.DB
	cookie CookieConfig
	sealer *cryptox.Sealer
	now    func() time.Time
	log    logging.Logger
}

// NewManager binds a Manager to db. With a secret it derives the sealing key,
// creating the salt on first use and refusing a secret that does not match
// the one the store was sealed with.
func NewManager(ctx context.Context, db *storage.DB, opts Options) (*Manager, error) {
	m := &Manager{
		db:     db,
		cookie: opts.Cookie,
		now:    opts.Now,
		log:    opts.Logger,
	}
	if m.cookie.Name == "" {
		m.cookie.Name = "access_token"
	}
	if m.cookie.MaxAge == 0 {
		m.cookie.MaxAge = 7 * 24 * time.Hour
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = logging.Nop()
	}
	m.log = m.log.With("module", "session")

	if err := m.initSealer(ctx, opts.Secret); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initSealer(ctx context.Context, secret string) error {
	return dbx.WithTx(ctx, m.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.New(m.db.Dialect, tx)

		salt, err := repo.Get(ctx, keySalt)
		if err != nil {
			return err
		}

		if secret == "" {
			if salt != nil {
				return ErrSecretRequired
			}
			return nil
		}

		if salt == nil {
			if salt, err = cryptox.RandomBytes(cryptox.SaltSize); err != nil {
				return fmt.Errorf("salt: %w", err)
			}
			key := cryptox.DeriveKey([]byte(secret), salt)
			if err := repo.Set(ctx, keySalt, salt); err != nil {
				return err
			}
			if err := repo.Set(ctx, keyVerifier, cryptox.MakeVerifier(key)); err != nil {
				return err
			}
			// a token written before sealing was enabled cannot be read any more
			if err := repo.Delete(ctx, keyToken); err != nil {
				return err
			}
			if err := repo.Delete(ctx, keyExpiresAt); err != nil {
				return err
			}
			return m.setSealer(key)
		}

		key := cryptox.DeriveKey([]byte(secret), salt)
		verifier, err := repo.Get(ctx, keyVerifier)
		if err != nil {
			return err
		}
		if !bytes.Equal(verifier, cryptox.MakeVerifier(key)) {
			return ErrSecretMismatch
		}
		return m.setSealer(key)
	})
}

func (m *Manager) setSealer(key []byte) error {
	defer cryptox.Wipe(key)
	s, err := cryptox.NewSealer(key)
	if err != nil {
		return err
	}
	m.sealer = s
	return nil
}

// Set stores token in the local store and, when w is non-nil, in the cookie.
// The store is written first; if that fails the cookie is left untouched.
func (m *Manager) Set(ctx context.Context, w http.ResponseWriter, token string) (Credential, error) {
	if token == "" {
		return Credential{}, ErrEmptyToken
	}
	cred := Credential{Token: token, ExpiresAt: ParseExpiry(token)}

	value := []byte(token)
	if m.sealer != nil {
		sealed, err := m.sealer.Seal(value)
		if err != nil {
			return Credential{}, fmt.Errorf("seal token: %w", err)
		}
		value = sealed
	}

	err := dbx.WithTx(ctx, m.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.New(m.db.Dialect, tx)
		if err := repo.Set(ctx, keyToken, value); err != nil {
			return err
		}
		if cred.ExpiresAt.IsZero() {
			return repo.Delete(ctx, keyExpiresAt)
		}
		return repo.Set(ctx, keyExpiresAt, []byte(strconv.FormatInt(cred.ExpiresAt.Unix(), 10)))
	})
	if err != nil {
		return Credential{}, fmt.Errorf("store credential: %w", err)
	}

	if w != nil {
		m.writeCookie(w, token)
	}

	m.log.Info(ctx, "credential stored", "expires_at", cred.ExpiresAt)
	return cred, nil
}

// Clear removes the credential from the local store and, when w is non-nil,
// expires the cookie. The cookie is expired even if the store fails.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter) error {
	if w != nil {
		m.ExpireCookie(w)
	}

	err := dbx.WithTx(ctx, m.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.New(m.db.Dialect, tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyExpiresAt)
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}

	m.log.Info(ctx, "credential cleared")
	return nil
}

// Get reads the credential from the local store. It returns ErrNoCredential
// when none is stored and ErrExpired, together with the credential, when its
// expiry has passed.
func (m *Manager) Get(ctx context.Context) (Credential, error) {
	repo := metadata.New(m.db.Dialect, m.db.DB)

	value, err := repo.Get(ctx, keyToken)
	if err != nil {
		return Credential{}, err
	}
	if len(value) == 0 {
		return Credential{}, ErrNoCredential
	}

	if m.sealer != nil {
		if value, err = m.sealer.Open(value); err != nil {
			return Credential{}, fmt.Errorf("unseal token: %w", err)
		}
	}
	cred := Credential{Token: string(value)}

	raw, err := repo.Get(ctx, keyExpiresAt)
	if err != nil {
		return Credential{}, err
	}
	if raw != nil {
		sec, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Credential{}, fmt.Errorf("parse %s: %w", keyExpiresAt, err)
		}
		cred.ExpiresAt = time.Unix(sec, 0)
	}

	if cred.Expired(m.now()) {
		return cred, ErrExpired
	}
	return cred, nil
}

// Token returns the usable stored token or "" when there is none.
func (m *Manager) Token(ctx context.Context) string {
	cred, err := m.Get(ctx)
	if err != nil {
		return ""
	}
	return cred.Token
}

// FromRequest reads the cookie copy. It reports false when the cookie is
// missing, empty, or carries a token past its exp claim.
func (m *Manager) FromRequest(r *http.Request) (Credential, bool) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return Credential{}, false
	}
	cred := Credential{Token: c.Value, ExpiresAt: ParseExpiry(c.Value)}
	if cred.Expired(m.now()) {
		return Credential{}, false
	}
	return cred, true
}

// Present is FromRequest without the credential, in the shape the guard takes.
func (m *Manager) Present(r *http.Request) bool {
	_, ok := m.FromRequest(r)
	return ok
}

// ExpireCookie drops the browser copy only.
func (m *Manager) ExpireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) writeCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
