package services

import (
	"context"
	"errors"
	"sync"

	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/prediction"
	"github.com/glycorisk/riskdash/internal/reports"
)

var ErrDownloadInProgress = errors.New("report download already in progress")

// PredictContext is what the prediction form needs before it can be shown.
// SelectedPatientID is preset for patient users to their own record.
type PredictContext struct {
	User              models.User
	Patients          []models.Patient
	SelectedPatientID int64
}

// Outcome is a created prediction plus the out-of-range notes for its inputs.
type Outcome struct {
	Prediction models.PredictionDetail
	Advisories []string
}

// Report is a downloaded PDF. ArchiveKey is empty when archiving is off or
// failed.
type Report struct {
	Filename   string
	Data       []byte
	ArchiveKey string
}

// PredictionService creates predictions and serves their history and reports.
//
// DownloadReport allows one download per prediction at a time; a second
// concurrent call for the same id fails with ErrDownloadInProgress while
// other ids proceed.
type PredictionService interface {
	Prepare(ctx context.Context) (PredictContext, error)
	Submit(ctx context.Context, form prediction.Form) (Outcome, error)
	History(ctx context.Context) ([]models.Prediction, error)
	PatientHistory(ctx context.Context, patientID int64) ([]models.Prediction, error)
	Get(ctx context.Context, id int64) (models.PredictionDetail, error)
	DownloadReport(ctx context.Context, id int64) (Report, error)
}

type predictionService struct {
	api      client.API
	archiver reports.Archiver
	log      logging.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewPredictionService(api client.API, archiver reports.Archiver, l logging.Logger) PredictionService {
	if archiver == nil {
		archiver = reports.NopArchiver{}
	}
	return &predictionService{
		api:      api,
		archiver: archiver,
		log:      l.With("module", "predictions"),
		inFlight: make(map[int64]struct{}),
	}
}

// Prepare loads the user and the selectable patients. Patient users get their
// patient record provisioned first; a failure there is ignored because the
// record usually exists already.
func (s *predictionService) Prepare(ctx context.Context) (PredictContext, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return PredictContext{}, err
	}

	if user.Role == models.RolePatient {
		if err := s.api.EnsurePatient(ctx); err != nil {
			s.log.Debug(ctx, "ensure patient", "error", err)
		}
	}

	patients, err := s.api.ListPatients(ctx)
	if err != nil {
		return PredictContext{User: user}, err
	}

	pc := PredictContext{User: user, Patients: patients}
	if user.Role == models.RolePatient && len(patients) > 0 {
		pc.SelectedPatientID = patients[0].ID
	}
	return pc, nil
}

func (s *predictionService) Submit(ctx context.Context, form prediction.Form) (Outcome, error) {
	in, err := form.Build()
	if err != nil {
		return Outcome{}, err
	}

	advisories := prediction.Advisories(in)

	p, err := s.api.CreatePrediction(ctx, in)
	if err != nil {
		return Outcome{Advisories: advisories}, err
	}

	s.log.Info(ctx, "prediction created", "id", p.ID, "patient_id", p.PatientID, "risk_level", p.RiskLevel)
	return Outcome{Prediction: p, Advisories: advisories}, nil
}

func (s *predictionService) History(ctx context.Context) ([]models.Prediction, error) {
	return s.api.ListPredictions(ctx)
}

func (s *predictionService) PatientHistory(ctx context.Context, patientID int64) ([]models.Prediction, error) {
	return s.api.ListPatientPredictions(ctx, patientID)
}

func (s *predictionService) Get(ctx context.Context, id int64) (models.PredictionDetail, error) {
	return s.api.GetPrediction(ctx, id)
}

func (s *predictionService) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *predictionService) release(id int64) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *predictionService) DownloadReport(ctx context.Context, id int64) (Report, error) {
	if !s.acquire(id) {
		return Report{}, ErrDownloadInProgress
	}
	defer s.release(id)

	pdf, err := s.api.DownloadReport(ctx, id)
	if err != nil {
		return Report{}, err
	}

	r := Report{Filename: reports.Filename(id), Data: pdf}

	key, err := s.archiver.Archive(ctx, id, r.Filename, pdf)
	if err != nil {
		s.log.Warn(ctx, "report archive failed", "prediction_id", id, "error", err)
	} else {
		r.ArchiveKey = key
	}

	return r, nil
}
