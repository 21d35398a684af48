package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glycorisk/riskdash/internal/apierr"
	"github.com/glycorisk/riskdash/internal/client"
	"github.com/glycorisk/riskdash/internal/client/clienttest"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
	"github.com/glycorisk/riskdash/internal/reports"
	"github.com/glycorisk/riskdash/internal/services"
	"github.com/glycorisk/riskdash/internal/session"
	"github.com/glycorisk/riskdash/internal/storage"
)

type testEnv struct {
	api      *clienttest.Fake
	sessions *session.Manager
	store    *storage.DB
	srv      *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "riskdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := session.NewManager(ctx, db, session.Options{})
	require.NoError(t, err)

	api := &clienttest.Fake{}
	l := logging.Nop()
	srv, err := New(Deps{
		Sessions:    sessions,
		Auth:        services.NewAuthService(api, sessions, l),
		Patients:    services.NewPatientService(api, l),
		Predictions: services.NewPredictionService(api, reports.NopArchiver{}, l),
		Store:       db,
		Logger:      l,
	}, Options{})
	require.NoError(t, err)

	return &testEnv{api: api, sessions: sessions, store: db, srv: srv}
}

// signIn stores a credential as a successful login would and returns the
// matching browser cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	_, err := e.sessions.Set(context.Background(), nil, "tok-1")
	require.NoError(t, err)
	return &http.Cookie{Name: "access_token", Value: "tok-1"}
}

func (e *testEnv) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func backendError(status int, body string) error {
	return &client.APIError{Status: status, Payload: apierr.Parse([]byte(body))}
}

func TestRoot_RedirectsByCookie(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/", nil, &http.Cookie{Name: "access_token", Value: "tok"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestGuard_ProtectedPagesNeedCookie(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/dashboard", "/dashboard/patients", "/dashboard/history"} {
		w := e.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
	assert.Empty(t, e.api.Calls())
}

func TestGuard_AuthPagesRedirectSignedIn(t *testing.T) {
	e := newTestEnv(t)
	cookie := &http.Cookie{Name: "access_token", Value: "tok"}

	w := e.do(http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/register", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="full_name"`)
}

func TestLoginDashboardLogout(t *testing.T) {
	e := newTestEnv(t)
	e.api.LoginFn = func(_ context.Context, creds models.Credentials) (models.Token, error) {
		if creds.Email != "doc@example.com" || creds.Password != "pw" {
			return models.Token{}, backendError(http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
		}
		return models.Token{AccessToken: "tok-1", TokenType: "bearer"}, nil
	}
	e.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 1, FullName: "Greg House", Role: models.RoleDoctor}, nil
	}

	w := e.do(http.MethodPost, "/login", url.Values{"email": {"doc@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	cookie := cookieNamed(w, "access_token")
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-1", cookie.Value)
	assert.Equal(t, "tok-1", e.sessions.Token(context.Background()))

	w = e.do(http.MethodGet, "/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Greg House")
	assert.Contains(t, body, "View Patients")
	assert.Contains(t, body, "Complete the comprehensive health assessment form (29 fields)")

	w = e.do(http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	expired := cookieNamed(w, "access_token")
	require.NotNil(t, expired)
	assert.Equal(t, -1, expired.MaxAge)
	assert.Empty(t, e.sessions.Token(context.Background()))

	// A browser that kept the old cookie is sent back to login by the re-check.
	w = e.do(http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	require.NotNil(t, cookieNamed(w, "access_token"))
	assert.Equal(t, -1, cookieNamed(w, "access_token").MaxAge)
}

func TestLogin_ShowsBackendMessage(t *testing.T) {
	e := newTestEnv(t)
	e.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{}, backendError(http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
	}

	w := e.do(http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")
	assert.Nil(t, cookieNamed(w, "access_token"))
}

func TestLogin_TransportFailureShowsFallback(t *testing.T) {
	e := newTestEnv(t)
	e.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{}, fmt.Errorf("dial: %w", client.ErrUnavailable)
	}

	w := e.do(http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Login failed. Please try again.")
}

func TestRegister_ListOfDetailsJoined(t *testing.T) {
	e := newTestEnv(t)
	e.api.RegisterFn = func(context.Context, models.Registration) (models.User, error) {
		return models.User{}, backendError(http.StatusUnprocessableEntity,
			`{"detail":[{"msg":"field required"},{"msg":"value is not a valid email address"}]}`)
	}

	w := e.do(http.MethodPost, "/register", url.Values{"email": {"bad"}, "password": {"x"}, "full_name": {"Pat"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "field required, value is not a valid email address")
}

func TestRegister_SignsIn(t *testing.T) {
	e := newTestEnv(t)
	var role models.Role
	e.api.RegisterFn = func(_ context.Context, reg models.Registration) (models.User, error) {
		role = reg.Role
		return models.User{ID: 5}, nil
	}
	e.api.LoginFn = func(context.Context, models.Credentials) (models.Token, error) {
		return models.Token{AccessToken: "tok-new"}, nil
	}

	w := e.do(http.MethodPost, "/register", url.Values{"email": {"p@example.com"}, "password": {"pw"}, "full_name": {"Pat"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, models.RolePatient, role)
	assert.Equal(t, "tok-new", cookieNamed(w, "access_token").Value)
}

func TestDashboard_PatientHasNoPatientsCard(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 2, FullName: "Pat", Role: models.RolePatient}, nil
	}

	w := e.do(http.MethodGet, "/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "View Patients")
	assert.Contains(t, w.Body.String(), "Track your progress in the History section")
}

func TestPatients_CreateRedirectsAndFailureRendersInline(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.ListPatientsFn = func(context.Context) ([]models.Patient, error) {
		return []models.Patient{{ID: 1, PatientCode: "P-001", Phone: "555"}}, nil
	}

	w := e.do(http.MethodGet, "/dashboard/patients", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "P-001")

	w = e.do(http.MethodPost, "/dashboard/patients", url.Values{"patient_code": {"P-002"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/patients", w.Header().Get("Location"))

	e.api.CreatePatientFn = func(context.Context, models.PatientInput) (models.Patient, error) {
		return models.Patient{}, errors.New("boom")
	}
	w = e.do(http.MethodPost, "/dashboard/patients", url.Values{"patient_code": {"P-003"}}, cookie)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Operation failed")
	assert.Contains(t, w.Body.String(), `value="P-003"`)
}

func TestPatients_EditPrefillsAndDelete(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.ListPatientsFn = func(context.Context) ([]models.Patient, error) {
		return []models.Patient{{ID: 7, PatientCode: "P-007", Address: "1 Main St"}}, nil
	}
	var deleted int64
	e.api.DeletePatientFn = func(_ context.Context, id int64) error {
		deleted = id
		return nil
	}

	w := e.do(http.MethodGet, "/dashboard/patients?edit=7", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/dashboard/patients/7"`)
	assert.Contains(t, w.Body.String(), `value="1 Main St"`)

	w = e.do(http.MethodPost, "/dashboard/patients/7/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, int64(7), deleted)

	w = e.do(http.MethodPost, "/dashboard/patients/abc/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPredict_PatientGetsOwnRecordSelected(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 2, Role: models.RolePatient}, nil
	}
	e.api.ListPatientsFn = func(context.Context) ([]models.Patient, error) {
		return []models.Patient{{ID: 21, PatientCode: "P-021"}}, nil
	}

	w := e.do(http.MethodGet, "/dashboard/predict", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="21" selected>P-021</option>`)
	assert.Contains(t, e.api.Calls(), "EnsurePatient")
}

func TestPredict_ValidationAndResult(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 1, Role: models.RoleDoctor}, nil
	}
	e.api.CreatePredictionFn = func(_ context.Context, in models.PredictionInput) (models.PredictionDetail, error) {
		return models.PredictionDetail{ID: 9, PatientID: in.PatientID, RiskProbability: 81.2, RiskLevel: "high", RiskInterpretation: "High risk"}, nil
	}

	w := e.do(http.MethodPost, "/dashboard/predict", url.Values{"patient_id": {"3"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Age is required")

	form := url.Values{
		"patient_id":                         {"3"},
		"age":                                {"54"},
		"bmi":                                {"31.2"},
		"systolic_bp":                        {"138"},
		"diastolic_bp":                       {"88"},
		"glucose_fasting":                    {"112"},
		"cholesterol_total":                  {"210"},
		"hdl_cholesterol":                    {"42"},
		"physical_activity_minutes_per_week": {"90"},
	}
	w = e.do(http.MethodPost, "/dashboard/predict", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "81.2%")
	assert.Contains(t, body, "HIGH")
	assert.Contains(t, body, "/dashboard/history/9/report")
}

func TestHistory_ListAndDownload(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)
	e.api.MeFn = func(context.Context) (models.User, error) {
		return models.User{ID: 1, Role: models.RoleDoctor}, nil
	}
	e.api.ListPredictionsFn = func(context.Context) ([]models.Prediction, error) {
		return []models.Prediction{{ID: 4, PatientID: 12, RiskProbability: 25, RiskLevel: "low"}}, nil
	}
	e.api.DownloadReportFn = func(_ context.Context, id int64) ([]byte, error) {
		if id == 5 {
			return nil, backendError(http.StatusNotFound, `{"detail":"Prediction not found"}`)
		}
		return []byte("%PDF-1.4"), nil
	}

	w := e.do(http.MethodGet, "/dashboard/history", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#12")
	assert.Contains(t, w.Body.String(), "25.0%")

	w = e.do(http.MethodGet, "/dashboard/history/4/report", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=diabetes_report_4.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = e.do(http.MethodGet, "/dashboard/history/5/report", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Prediction not found")
}

func TestHealthAndReadiness(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = e.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	e.api.HealthFn = func(context.Context) error { return client.ErrUnavailable }
	w = e.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"unhealthy`)
}

func TestRequestID_GeneratedOrEchoed(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("12345")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("01234567890")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- e.srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPercent_FormatsBackendValueUnscaled(t *testing.T) {
	percent := funcMap["percent"].(func(float64) string)
	assert.Equal(t, "45.2%", percent(45.23))
	assert.Equal(t, "0.0%", percent(0))
	assert.Equal(t, "100.0%", percent(100))
}

func TestRequireSession_RejectsCookieNotMatchingStore(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t)
	forged := &http.Cookie{Name: "access_token", Value: "anything"}

	w := e.do(http.MethodGet, "/dashboard", nil, forged)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	require.NotNil(t, cookieNamed(w, "access_token"))
	assert.Equal(t, -1, cookieNamed(w, "access_token").MaxAge)

	w = e.do(http.MethodPost, "/dashboard/patients/7/delete", nil, forged)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	assert.Empty(t, e.api.Calls())
	assert.Equal(t, "tok-1", e.sessions.Token(context.Background()))
}

func TestRequireSession_AcceptsMatchingCookie(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.signIn(t)

	w := e.do(http.MethodPost, "/dashboard/patients/7/delete", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/patients", w.Header().Get("Location"))
	assert.Equal(t, []string{"DeletePatient"}, e.api.Calls())
}
