package services

import (
	"context"
	"errors"
	"strings"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
)

var ErrPatientCodeRequired = errors.New("patient code is required")

// PatientService manages patient records. Listing returns every patient for
// doctors and the caller's own record for patients; the backend decides.
type PatientService interface {
	List(ctx context.Context) ([]models.Patient, error)
	Get(ctx context.Context, id int64) (models.Patient, error)
	Create(ctx context.Context, in models.PatientInput) (models.Patient, error)
	Update(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error)
	Delete(ctx context.Context, id int64) error
}

type patientService struct {
	api client.API
	log logging.Logger
}

func NewPatientService(api client.API, l logging.Logger) PatientService {
	return &patientService{api: api, log: l.With("module", "patients")}
}

func normalize(in models.PatientInput) models.PatientInput {
	in.PatientCode = strings.TrimSpace(in.PatientCode)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.EmergencyContact = strings.TrimSpace(in.EmergencyContact)
	return in
}

func (s *patientService) List(ctx context.Context) ([]models.Patient, error) {
	return s.api.ListPatients(ctx)
}

func (s *patientService) Get(ctx context.Context, id int64) (models.Patient, error) {
	return s.api.GetPatient(ctx, id)
}

func (s *patientService) Create(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	in = normalize(in)
	if in.PatientCode == "" {
		return models.Patient{}, ErrPatientCodeRequired
	}
	p, err := s.api.CreatePatient(ctx, in)
	if err != nil {
		return models.Patient{}, err
	}
	s.log.Info(ctx, "patient created", "id", p.ID, "code", p.PatientCode)
	return p, nil
}

func (s *patientService) Update(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error) {
	p, err := s.api.UpdatePatient(ctx, id, normalize(in))
	if err != nil {
		return models.Patient{}, err
	}
	s.log.Info(ctx, "patient updated", "id", id)
	return p, nil
}

func (s *patientService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeletePatient(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "patient deleted", "id", id)
	return nil
}
