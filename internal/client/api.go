package client

import (
	"context"

	"github.com/glycorisk/riskdash/internal/models"
)

// API is the backend surface the dashboard consumes.
type API interface {
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	Login(ctx context.Context, creds models.Credentials) (models.Token, error)
	Me(ctx context.Context) (models.User, error)
	EnsurePatient(ctx context.Context) error

	ListPatients(ctx context.Context) ([]models.Patient, error)
	CreatePatient(ctx context.Context, in models.PatientInput) (models.Patient, error)
	GetPatient(ctx context.Context, id int64) (models.Patient, error)
	UpdatePatient(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error)
	DeletePatient(ctx context.Context, id int64) error

	CreatePrediction(ctx context.Context, in models.PredictionInput) (models.PredictionDetail, error)
	ListPredictions(ctx context.Context) ([]models.Prediction, error)
	GetPrediction(ctx context.Context, id int64) (models.PredictionDetail, error)
	ListPatientPredictions(ctx context.Context, patientID int64) ([]models.Prediction, error)
	DownloadReport(ctx context.Context, id int64) ([]byte, error)

	Health(ctx context.Context) error
}
