package web

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/prediction"
	"github.com/glycorisk/riskdash/internal/services"
)

const (
	predictFallback  = "Prediction failed. Please try again."
	historyFallback  = "Failed to load history"
	downloadFallback = "Failed to download report"
)

func predictData(pc services.PredictContext, form prediction.Form) gin.H {
	selected := pc.SelectedPatientID
	if id, err := strconv.ParseInt(form.PatientID, 10, 64); err == nil {
		selected = id
	}
	return gin.H{
		"Title":    "New Prediction",
		"User":     pc.User,
		"IsDoctor": pc.User.IsDoctor(),
		"Patients": pc.Patients,
		"Selected": selected,
		"Form":     form,
		"Fields":   prediction.Fields,
		"Selects":  prediction.Selects,
		"Flags":    prediction.Flags,
	}
}

func (s *Server) predictPage(c *gin.Context) {
	pc, err := s.predictions.Prepare(c.Request.Context())
	data := predictData(pc, prediction.NewForm())
	if err != nil {
		data["Error"] = messageFor(err, listPatientsFallback)
		c.HTML(statusFor(err), "predict.html", data)
		return
	}
	c.HTML(http.StatusOK, "predict.html", data)
}

func (s *Server) predict(c *gin.Context) {
	ctx := c.Request.Context()
	if err := c.Request.ParseForm(); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form")
		return
	}
	form := prediction.FormFromValues(c.Request.PostForm)

	pc, err := s.predictions.Prepare(ctx)
	if err != nil {
		s.log.Warn(ctx, "prepare prediction form", "error", err)
	}

	out, err := s.predictions.Submit(ctx, form)
	data := predictData(pc, form)
	data["Advisories"] = out.Advisories
	if err != nil {
		data["Error"] = messageFor(err, predictFallback)
		c.HTML(statusFor(err), "predict.html", data)
		return
	}

	data["Result"] = out.Prediction
	c.HTML(http.StatusOK, "predict.html", data)
}

// renderHistory shows the prediction list with errMsg, if any, above it.
func (s *Server) renderHistory(c *gin.Context, status int, errMsg string) {
	ctx := c.Request.Context()
	data := gin.H{"Title": "Prediction History", "Error": errMsg}

	var predictions []models.Prediction
	user, err := s.auth.CurrentUser(ctx)
	if err == nil {
		data["IsDoctor"] = user.IsDoctor()
		predictions, err = s.predictions.History(ctx)
	}
	if err != nil && errMsg == "" {
		data["Error"] = messageFor(err, historyFallback)
		status = statusFor(err)
	}
	data["Predictions"] = predictions

	c.HTML(status, "history.html", data)
}

func (s *Server) history(c *gin.Context) {
	s.renderHistory(c, http.StatusOK, "")
}

func (s *Server) downloadReport(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, "Prediction not found")
		return
	}

	report, err := s.predictions.DownloadReport(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, services.ErrDownloadInProgress) {
			s.log.Warn(c.Request.Context(), "download report", "prediction_id", id, "error", err)
		}
		s.renderHistory(c, statusFor(err), messageFor(err, downloadFallback))
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename}))
	c.Data(http.StatusOK, "application/pdf", report.Data)
}
