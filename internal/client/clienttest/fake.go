// Package clienttest provides a scriptable client.API for tests.
package clienttest

import (
	"context"
	"sync"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/models"
)

var _ client.API = (*Fake)(nil)

// Fake answers each call with its matching func field. A nil field returns
// zero values and no error. Every call is recorded by method name.
type Fake struct {
	RegisterFn               func(ctx context.Context, reg models.Registration) (models.User, error)
	LoginFn                  func(ctx context.Context, creds models.Credentials) (models.Token, error)
	MeFn                     func(ctx context.Context) (models.User, error)
	EnsurePatientFn          func(ctx context.Context) error
	ListPatientsFn           func(ctx context.Context) ([]models.Patient, error)
	CreatePatientFn          func(ctx context.Context, in models.PatientInput) (models.Patient, error)
	GetPatientFn             func(ctx context.Context, id int64) (models.Patient, error)
	UpdatePatientFn          func(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error)
	DeletePatientFn          func(ctx context.Context, id int64) error
	CreatePredictionFn       func(ctx context.Context, in models.PredictionInput) (models.PredictionDetail, error)
	ListPredictionsFn        func(ctx context.Context) ([]models.Prediction, error)
	GetPredictionFn          func(ctx context.Context, id int64) (models.PredictionDetail, error)
	ListPatientPredictionsFn func(ctx context.Context, patientID int64) ([]models.Prediction, error)
	DownloadReportFn         func(ctx context.Context, id int64) ([]byte, error)
	HealthFn                 func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

// Calls returns the recorded method names in call order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	f.record("Register")
	if f.RegisterFn == nil {
		return models.User{}, nil
	}
	return f.RegisterFn(ctx, reg)
}

func (f *Fake) Login(ctx context.Context, creds models.Credentials) (models.Token, error) {
	f.record("Login")
	if f.LoginFn == nil {
		return models.Token{}, nil
	}
	return f.LoginFn(ctx, creds)
}

func (f *Fake) Me(ctx context.Context) (models.User, error) {
	f.record("Me")
	if f.MeFn == nil {
		return models.User{}, nil
	}
	return f.MeFn(ctx)
}

func (f *Fake) EnsurePatient(ctx context.Context) error {
	f.record("EnsurePatient")
	if f.EnsurePatientFn == nil {
		return nil
	}
	return f.EnsurePatientFn(ctx)
}

func (f *Fake) ListPatients(ctx context.Context) ([]models.Patient, error) {
	f.record("ListPatients")
	if f.ListPatientsFn == nil {
		return nil, nil
	}
	return f.ListPatientsFn(ctx)
}

func (f *Fake) CreatePatient(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	f.record("CreatePatient")
	if f.CreatePatientFn == nil {
		return models.Patient{}, nil
	}
	return f.CreatePatientFn(ctx, in)
}

func (f *Fake) GetPatient(ctx context.Context, id int64) (models.Patient, error) {
	f.record("GetPatient")
	if f.GetPatientFn == nil {
		return models.Patient{}, nil
	}
	return f.GetPatientFn(ctx, id)
}

func (f *Fake) UpdatePatient(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error) {
	f.record("UpdatePatient")
	if f.UpdatePatientFn == nil {
		return models.Patient{}, nil
	}
	return f.UpdatePatientFn(ctx, id, in)
}

func (f *Fake) DeletePatient(ctx context.Context, id int64) error {
	f.record("DeletePatient")
	if f.DeletePatientFn == nil {
		return nil
	}
	return f.DeletePatientFn(ctx, id)
}

func (f *Fake) CreatePrediction(ctx context.Context, in models.PredictionInput) (models.PredictionDetail, error) {
	f.record("CreatePrediction")
	if f.CreatePredictionFn == nil {
		return models.PredictionDetail{}, nil
	}
	return f.CreatePredictionFn(ctx, in)
}

func (f *Fake) ListPredictions(ctx context.Context) ([]models.Prediction, error) {
	f.record("ListPredictions")
	if f.ListPredictionsFn == nil {
		return nil, nil
	}
	return f.ListPredictionsFn(ctx)
}

func (f *Fake) GetPrediction(ctx context.Context, id int64) (models.PredictionDetail, error) {
	f.record("GetPrediction")
	if f.GetPredictionFn == nil {
		return models.PredictionDetail{}, nil
	}
	return f.GetPredictionFn(ctx, id)
}

func (f *Fake) ListPatientPredictions(ctx context.Context, patientID int64) ([]models.Prediction, error) {
	f.record("ListPatientPredictions")
	if f.ListPatientPredictionsFn == nil {
		return nil, nil
	}
	return f.ListPatientPredictionsFn(ctx, patientID)
}

func (f *Fake) DownloadReport(ctx context.Context, id int64) ([]byte, error) {
	f.record("DownloadReport")
	if f.DownloadReportFn == nil {
		return nil, nil
	}
	return f.DownloadReportFn(ctx, id)
}

func (f *Fake) Health(ctx context.Context) error {
	f.record("Health")
	if f.HealthFn == nil {
		return nil
	}
	return f.HealthFn(ctx)
}
