package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/prediction"
	"github.com/glycorisk/riskdash/internal/services"
)

var funcMap = template.FuncMap{
	"riskColor": prediction.RiskColor,
	// the backend reports risk_probability already in percent
	"percent": func(p float64) string {
		return strconv.FormatFloat(p, 'f', 1, 64) + "%"
	},
	"upper": strings.ToUpper,
	"intp": func(v *int) string {
		if v == nil {
			return "-"
		}
		return strconv.Itoa(*v)
	},
	"floatp": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 1, 64)
	},
	"strp": func(v *string) string {
		if v == nil || *v == "" {
			return "-"
		}
		return *v
	},
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

func (s *Server) renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", gin.H{"Title": http.StatusText(status), "Error": msg})
}

// statusFor picks the response status of a page that failed with err.
func statusFor(err error) int {
	var verr *prediction.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &verr), errors.Is(err, services.ErrPatientCodeRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrDownloadInProgress):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

// messageFor is the inline error line for err.
func messageFor(err error, fallback string) string {
	var verr *prediction.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, services.ErrPatientCodeRequired):
		return "Patient code is required"
	case errors.Is(err, services.ErrDownloadInProgress):
		return "This report is already downloading"
	}
	return client.Message(err, fallback)
}

func paramID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}
