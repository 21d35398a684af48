package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/session"
)

const requestIDHeader = "X-Request-ID"

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		c.Next()

		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", id,
		)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// requireSession re-checks the durable credential behind the guard's cookie
// check. The request passes only when its cookie carries the stored token. A
// missing or expired credential, or a cookie that does not match it, drops
// the cookie and sends the browser to the login page.
func (s *Server) requireSession(c *gin.Context) {
	ctx := c.Request.Context()

	cred, err := s.sessions.Get(ctx)
	switch {
	case err == nil:
		if cookie, ok := s.sessions.FromRequest(c.Request); ok &&
			subtle.ConstantTimeCompare([]byte(cookie.Token), []byte(cred.Token)) == 1 {
			c.Next()
			return
		}
		s.log.Warn(ctx, "cookie does not match stored credential", "path", c.Request.URL.Path)
		s.sessions.ExpireCookie(c.Writer)
	case errors.Is(err, session.ErrExpired):
		if err := s.sessions.Clear(ctx, c.Writer); err != nil {
			s.log.Warn(ctx, "clear expired credential", "error", err)
		}
	case errors.Is(err, session.ErrNoCredential):
		s.sessions.ExpireCookie(c.Writer)
	default:
		s.log.Error(ctx, "read credential", "error", err)
		s.renderError(c, http.StatusInternalServerError, "Session store unavailable")
		c.Abort()
		return
	}

	c.Redirect(http.StatusFound, s.policy.LoginPath)
	c.Abort()
}
