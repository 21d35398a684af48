package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glycorisk/riskdash/internal/models"
)

const (
	listPatientsFallback  = "Failed to load patients"
	savePatientFallback   = "Operation failed"
	deletePatientFallback = "Delete failed"
)

const patientsPath = "/dashboard/patients"

func patientInput(c *gin.Context) models.PatientInput {
	return models.PatientInput{
		PatientCode:      c.PostForm("patient_code"),
		DateOfBirth:      c.PostForm("date_of_birth"),
		Phone:            c.PostForm("phone"),
		Address:          c.PostForm("address"),
		EmergencyContact: c.PostForm("emergency_contact"),
	}
}

// renderPatients shows the list. errMsg, when set, is shown above it with
// status; the form keeps input so a failed save can be retried.
func (s *Server) renderPatients(c *gin.Context, status int, errMsg string, editID int64, input models.PatientInput) {
	data := gin.H{
		"Title":  "Patients",
		"EditID": editID,
		"Input":  input,
		"Error":  errMsg,
	}

	patients, err := s.patients.List(c.Request.Context())
	if err != nil && errMsg == "" {
		data["Error"] = messageFor(err, listPatientsFallback)
		status = statusFor(err)
	}
	data["Patients"] = patients

	if editID != 0 && input == (models.PatientInput{}) {
		for _, p := range patients {
			if p.ID == editID {
				data["Input"] = p.Input()
			}
		}
	}

	c.HTML(status, "patients.html", data)
}

func (s *Server) listPatients(c *gin.Context) {
	editID, _ := strconv.ParseInt(c.Query("edit"), 10, 64)
	s.renderPatients(c, http.StatusOK, "", editID, models.PatientInput{})
}

func (s *Server) createPatient(c *gin.Context) {
	in := patientInput(c)
	if _, err := s.patients.Create(c.Request.Context(), in); err != nil {
		s.renderPatients(c, statusFor(err), messageFor(err, savePatientFallback), 0, in)
		return
	}
	c.Redirect(http.StatusSeeOther, patientsPath)
}

func (s *Server) updatePatient(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, "Patient not found")
		return
	}

	in := patientInput(c)
	if _, err := s.patients.Update(c.Request.Context(), id, in); err != nil {
		s.renderPatients(c, statusFor(err), messageFor(err, savePatientFallback), id, in)
		return
	}
	c.Redirect(http.StatusSeeOther, patientsPath)
}

func (s *Server) deletePatient(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, "Patient not found")
		return
	}

	if err := s.patients.Delete(c.Request.Context(), id); err != nil {
		s.renderPatients(c, statusFor(err), messageFor(err, deletePatientFallback), 0, models.PatientInput{})
		return
	}
	c.Redirect(http.StatusSeeOther, patientsPath)
}
