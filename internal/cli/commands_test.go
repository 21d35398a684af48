package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glycorisk/riskdash/internal/apierr"
	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/client/clienttest"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/prediction"
	"github.com/glycorisk/riskdash/internal/reports"
	"github.com/glycorisk/riskdash/internal/services"
	"github.com/glycorisk/riskdash/internal/session"
	"github.com/glycorisk/riskdash/internal/storage"
)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

type testApp struct {
	*App
	api      *clienttest.Fake
	sessions *session.Manager
	out      *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "riskdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := session.NewManager(ctx, db, session.Options{})
	require.NoError(t, err)

	api := &clienttest.Fake{}
	l := logging.Nop()
	out := &bytes.Buffer{}
	app := NewApp(Deps{
		Sessions:    sessions,
		Auth:        services.NewAuthService(api, sessions, l),
		Patients:    services.NewPatientService(api, l),
		Predictions: services.NewPredictionService(api, reports.NopArchiver{}, l),
		Logger:      l,
		ReportDir:   t.TempDir(),
	}, strings.NewReader(input), out)

	return &testApp{App: app, api: api, sessions: sessions, out: out}
}

func backendError(status int, body string) error {
	return &client.APIError{Status: status, Payload: apierr.Parse([]byte(body))}
}

func TestLogin_StoresCredentialAndUpdatesPrompt(t *testing.T) {
	stubPassword(t, "pw")
	ta := newTestApp(t, "doc@example.com\n")
	ctx := context.Background()
	ta.api.LoginFn = func(_ context.Context, creds models.Credentials) (models.Token, error) {
		assert.Equal(t, models.Credentials{Email: "doc@example.com", Password: "pw"}, creds)
		return models.Token{AccessToken: "tok-1"}, nil
	}

	assert.Equal(t, "", ta.getStatus(ctx))
	require.NoError(t, ta.Login(ctx))

	assert.Contains(t, ta.out.String(), "Login successful.")
	assert.Equal(t, "tok-1", ta.sessions.Token(ctx))
	assert.True(t, ta.isLoggedIn(ctx))
	assert.Equal(t, "(doc@example.com)", ta.getStatus(ctx))
}

func TestLogin_ShowsBackendMessage(t *testing.T) {
	stubPassword(t, "bad")
	ta := newTestApp(t, "doc@example.com\n")
	ta.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{}, backendError(http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
	}

	require.Error(t, ta.Login(context.Background()))
	assert.Contains(t, ta.out.String(), "Error: Incorrect email or password")
	assert.False(t, ta.isLoggedIn(context.Background()))
}

func TestLogin_UnreachableBackendShowsFallback(t *testing.T) {
	stubPassword(t, "pw")
	ta := newTestApp(t, "doc@example.com\n")
	ta.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{}, client.ErrUnavailable
	}

	require.Error(t, ta.Login(context.Background()))
	assert.Contains(t, ta.out.String(), "Error: Login failed. Please try again.")
}

func TestRegister_DefaultsToPatientAndLogsIn(t *testing.T) {
	stubPassword(t, "pw")
	ta := newTestApp(t, "p@example.com\nPat Smith\n\n")
	var got models.Registration
	ta.api.RegisterFn = func(_ context.Context, reg models.Registration) (models.User, error) {
		got = reg
		return models.User{ID: 4}, nil
	}
	ta.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{AccessToken: "tok-2"}, nil
	}

	ctx := context.Background()
	require.NoError(t, ta.Register(ctx))
	assert.Equal(t, models.Registration{Email: "p@example.com", Password: "pw", FullName: "Pat Smith", Role: models.RolePatient}, got)
	assert.Equal(t, "tok-2", ta.sessions.Token(ctx))
	assert.Equal(t, "(Pat Smith)", ta.getStatus(ctx))
}

func TestLogout_ClearsCredential(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	_, err := ta.sessions.Set(ctx, nil, "tok-1")
	require.NoError(t, err)

	require.NoError(t, ta.Logout(ctx))
	assert.False(t, ta.isLoggedIn(ctx))
	assert.Contains(t, ta.out.String(), "Logged out.")
}

func TestGetStatus_Expired(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "p@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ta.sessions.Set(ctx, nil, tok)
	require.NoError(t, err)

	assert.Equal(t, "(session expired)", ta.getStatus(ctx))
	assert.False(t, ta.isLoggedIn(ctx))
}

func TestMe(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{Email: "doc@example.com", FullName: "Greg House", Role: models.RoleDoctor}, nil
	}

	require.NoError(t, ta.Me(context.Background()))
	assert.Contains(t, ta.out.String(), "Greg House <doc@example.com>, doctor")
}

func TestPatients_AddEditDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("add", func(t *testing.T) {
		ta := newTestApp(t, "P-1\n\n555\n\n\n")
		var got models.PatientInput
		ta.api.CreatePatientFn = func(_ context.Context, in models.PatientInput) (models.Patient, error) {
			got = in
			return models.Patient{ID: 11, PatientCode: in.PatientCode}, nil
		}
		require.NoError(t, ta.AddPatient(ctx))
		assert.Equal(t, models.PatientInput{PatientCode: "P-1", Phone: "555"}, got)
		assert.Contains(t, ta.out.String(), "Created patient #11 (P-1).")
	})

	t.Run("edit keeps blank answers", func(t *testing.T) {
		ta := newTestApp(t, "\n222\n\n\n")
		ta.api.GetPatientFn = func(_ context.Context, id int64) (models.Patient, error) {
			return models.Patient{ID: id, PatientCode: "P-4", DateOfBirth: "1970-01-01", Phone: "111"}, nil
		}
		var got models.PatientInput
		ta.api.UpdatePatientFn = func(_ context.Context, _ int64, in models.PatientInput) (models.Patient, error) {
			got = in
			return models.Patient{}, nil
		}
		require.NoError(t, ta.EditPatient(ctx, []string{"4"}))
		assert.Equal(t, "1970-01-01", got.DateOfBirth)
		assert.Equal(t, "222", got.Phone)
	})

	t.Run("edit without id", func(t *testing.T) {
		ta := newTestApp(t, "")
		require.Error(t, ta.EditPatient(ctx, nil))
		assert.Contains(t, ta.out.String(), "Error: Usage: editpatient <id>")
		assert.Empty(t, ta.api.Calls())
	})

	t.Run("delete asks first", func(t *testing.T) {
		ta := newTestApp(t, "n\ny\n")
		require.NoError(t, ta.DeletePatient(ctx, []string{"9"}))
		assert.Empty(t, ta.api.Calls())
		require.NoError(t, ta.DeletePatient(ctx, []string{"9"}))
		assert.Equal(t, []string{"DeletePatient"}, ta.api.Calls())
	})

	t.Run("delete failure", func(t *testing.T) {
		ta := newTestApp(t, "y\n")
		ta.api.DeletePatientFn = func(context.Context, int64) error { return io.ErrUnexpectedEOF }
		require.Error(t, ta.DeletePatient(ctx, []string{"9"}))
		assert.Contains(t, ta.out.String(), "Error: Delete failed")
	})
}

// predictInput answers every prompt of Predict for a doctor choosing patient 3.
func predictInput() string {
	required := map[string]string{
		"age":                                "54",
		"bmi":                                "31.2",
		"systolic_bp":                        "138",
		"diastolic_bp":                       "88",
		"glucose_fasting":                    "112",
		"cholesterol_total":                  "210",
		"hdl_cholesterol":                    "42",
		"physical_activity_minutes_per_week": "90",
	}
	lines := []string{"3"}
	for range prediction.Selects {
		lines = append(lines, "")
	}
	for _, f := range prediction.Fields {
		lines = append(lines, required[f.Name])
	}
	lines = append(lines, "y", "n", "")
	return strings.Join(lines, "\n") + "\n"
}

func TestPredict_DoctorFlow(t *testing.T) {
	ta := newTestApp(t, predictInput())
	ta.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 1, FullName: "Greg House", Role: models.RoleDoctor}, nil
	}
	ta.api.ListPatientsFn = func(context.Context) ([]models.Patient, error) {
		return []models.Patient{{ID: 3, PatientCode: "P-3"}}, nil
	}
	var got models.PredictionInput
	ta.api.CreatePredictionFn = func(_ context.Context, in models.PredictionInput) (models.PredictionDetail, error) {
		got = in
		return models.PredictionDetail{ID: 21, RiskProbability: 42, RiskLevel: "medium", RiskInterpretation: "Moderate risk"}, nil
	}

	require.NoError(t, ta.Predict(context.Background()))

	assert.Equal(t, int64(3), got.PatientID)
	assert.Equal(t, 54, got.Age)
	assert.Equal(t, "Male", got.Gender)
	assert.Equal(t, 5.0, got.DietScore)
	assert.True(t, got.FamilyHistoryDiabetes)
	assert.False(t, got.HypertensionHistory)

	out := ta.out.String()
	assert.Contains(t, out, "Prediction #21: 42.0% risk, level MEDIUM")
	assert.Contains(t, out, "report 21")
}

func TestPredict_PatientWithoutRecords(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 1, Role: models.RoleDoctor}, nil
	}

	require.Error(t, ta.Predict(context.Background()))
	assert.Contains(t, ta.out.String(), "No patients yet")
}

func TestHistory(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	ta.api.ListPredictionsFn = func(context.Context) ([]models.Prediction, error) {
		return []models.Prediction{{ID: 2, PatientID: 3, RiskProbability: 10, RiskLevel: "low"}}, nil
	}
	var patient int64
	ta.api.ListPatientPredictionsFn = func(_ context.Context, id int64) ([]models.Prediction, error) {
		patient = id
		return nil, nil
	}

	require.NoError(t, ta.History(ctx, nil))
	assert.Contains(t, ta.out.String(), "#2  -  patient #3  10.0%  LOW")

	require.NoError(t, ta.History(ctx, []string{"3"}))
	assert.Equal(t, int64(3), patient)
	assert.Contains(t, ta.out.String(), "No predictions yet.")
}

func TestReport_SavesFile(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.DownloadReportFn = func(context.Context, int64) ([]byte, error) {
		return []byte("%PDF-1.4"), nil
	}

	require.NoError(t, ta.Report(context.Background(), []string{"8"}))

	path := filepath.Join(ta.reportDir, "diabetes_report_8.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Contains(t, ta.out.String(), "Saved "+path)
}

func TestReport_BackendError(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.DownloadReportFn = func(context.Context, int64) ([]byte, error) {
		return nil, backendError(http.StatusNotFound, `{"detail":"Prediction not found"}`)
	}

	require.Error(t, ta.Report(context.Background(), []string{"8"}))
	assert.Contains(t, ta.out.String(), "Error: Prediction not found")
}
