package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glycorisk/riskdash/internal/models"
)

const (
	loginFallback    = "Login failed. Please try again."
	registerFallback = "Registration failed. Please try again."
)

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (s *Server) login(c *gin.Context) {
	creds := models.Credentials{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}

	if _, err := s.auth.Login(c.Request.Context(), c.Writer, creds); err != nil {
		s.log.Info(c.Request.Context(), "login failed", "email", creds.Email, "error", err)
		c.HTML(statusFor(err), "login.html", gin.H{
			"Title": "Login",
			"Email": creds.Email,
			"Error": messageFor(err, loginFallback),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, s.policy.DashboardPath)
}

func (s *Server) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Role":  string(models.RolePatient),
	})
}

func (s *Server) register(c *gin.Context) {
	reg := models.Registration{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
		FullName: strings.TrimSpace(c.PostForm("full_name")),
		Role:     models.Role(c.DefaultPostForm("role", string(models.RolePatient))),
	}

	if _, err := s.auth.Register(c.Request.Context(), c.Writer, reg); err != nil {
		c.HTML(statusFor(err), "register.html", gin.H{
			"Title":    "Register",
			"Email":    reg.Email,
			"FullName": reg.FullName,
			"Role":     string(reg.Role),
			"Error":    messageFor(err, registerFallback),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, s.policy.DashboardPath)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), c.Writer); err != nil {
		s.log.Error(c.Request.Context(), "logout", "error", err)
	}
	c.Redirect(http.StatusSeeOther, s.policy.LoginPath)
}

func (s *Server) dashboard(c *gin.Context) {
	data := gin.H{"Title": "Dashboard"}

	user, err := s.auth.CurrentUser(c.Request.Context())
	if err != nil {
		s.log.Warn(c.Request.Context(), "fetch user", "error", err)
	} else {
		data["User"] = user
		data["IsDoctor"] = user.IsDoctor()
	}

	c.HTML(http.StatusOK, "dashboard.html", data)
}
