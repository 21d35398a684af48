// Package guard decides, before any page handler runs, whether a navigation
// passes, goes to the login page, or goes to the dashboard.
package guard

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// Decision is what the guard does with a navigation.
type Decision int

const (
	Pass Decision = iota
	RedirectLogin
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Pass:
		return "pass"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "unknown"
	}
}

// Policy lists the protected path prefixes and the auth-only pages.
type Policy struct {
	ProtectedPrefixes []string
	AuthPaths         []string
	LoginPath         string
	DashboardPath     string
}

// DefaultPolicy protects /dashboard and keeps signed-in users off /login and
// /register.
func DefaultPolicy() Policy {
	return Policy{
		ProtectedPrefixes: []string{"/dashboard"},
		AuthPaths:         []string{"/login", "/register"},
		LoginPath:         "/login",
		DashboardPath:     "/dashboard",
	}
}

// Decide is a pure function of the path and whether a credential is present.
// Protected paths match by string prefix, auth-only paths match exactly.
func (p Policy) Decide(path string, hasCredential bool) Decision {
	if !hasCredential && p.isProtected(path) {
		return RedirectLogin
	}
	if hasCredential && slices.Contains(p.AuthPaths, path) {
		return RedirectDashboard
	}
	return Pass
}

func (p Policy) isProtected(path string) bool {
	for _, prefix := range p.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware applies p to every request. present reports whether the request
// carries a usable credential.
func Middleware(p Policy, present func(*http.Request) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch p.Decide(c.Request.URL.Path, present(c.Request)) {
		case RedirectLogin:
			c.Redirect(http.StatusFound, p.LoginPath)
			c.Abort()
		case RedirectDashboard:
			c.Redirect(http.StatusFound, p.DashboardPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// Root handles "/" by sending the visitor to the dashboard or to login. It
// reads only the cookie copy through present, like Middleware; the durable
// store is consulted after the redirect, by the dashboard's own re-check.
func Root(p Policy, present func(*http.Request) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if present(c.Request) {
			c.Redirect(http.StatusFound, p.DashboardPath)
			return
		}
		c.Redirect(http.StatusFound, p.LoginPath)
	}
}
