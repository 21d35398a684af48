// Package client talks to the backend REST API.
//
// Every call goes to <base>/api and carries "Authorization: Bearer <token>"
// whenever the TokenSource has a usable token. Non-2xx answers become
// *APIError values that match ErrUnauthorized, ErrNotFound or ErrUnavailable
// with errors.Is; transport failures match ErrUnavailable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/glycorisk/riskdash/internal/apierr"
	"github.com/glycorisk/riskdash/internal/logging"
	"github.com/glycorisk/riskdash/internal/models"
)

const maxErrorBody = 1 << 20

type HTTPClient struct {
	apiURL    string
	healthURL string
	hc        *http.Client
	log       logging.Logger
}

var _ API = (*HTTPClient)(nil)

type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    logging.Logger
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces the underlying transport (default
// http.DefaultTransport). The bearer and tracing layers still wrap it.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a client for the backend at baseURL (without the /api suffix).
func New(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	o := options{
		timeout:   15 * time.Second,
		transport: http.DefaultTransport,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		apiURL:    base + "/api",
		healthURL: base + "/health",
		hc: &http.Client{
			Timeout:   o.timeout,
			Transport: otelhttp.NewTransport(&bearerTransport{base: o.transport, tokens: tokens}),
		},
		log: o.logger.With("module", "client"),
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, url string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, url, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs the request and returns the response for 2xx statuses. The
// caller closes the body.
func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn(req.Context(), "api call failed", "method", req.Method, "url", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.log.Debug(req.Context(), "api call",
		"method", req.Method,
		"url", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &APIError{Status: resp.StatusCode, Payload: apierr.Parse(body)}
}

// do sends in as JSON (when non-nil) and decodes the answer into out (when
// non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, c.apiURL+path, in)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/auth/register", reg, &u)
	return u, err
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.Token, error) {
	var t models.Token
	err := c.do(ctx, http.MethodPost, "/auth/login", creds, &t)
	return t, err
}

func (c *HTTPClient) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

func (c *HTTPClient) EnsurePatient(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/me/ensure-patient", nil, nil)
}

func (c *HTTPClient) ListPatients(ctx context.Context) ([]models.Patient, error) {
	var out []models.Patient
	err := c.do(ctx, http.MethodGet, "/patients/", nil, &out)
	return out, err
}

func (c *HTTPClient) CreatePatient(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodPost, "/patients/", in, &p)
	return p, err
}

func (c *HTTPClient) GetPatient(ctx context.Context, patientID int64) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodGet, "/patients/"+id(patientID)+"/", nil, &p)
	return p, err
}

func (c *HTTPClient) UpdatePatient(ctx context.Context, patientID int64, in models.PatientInput) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodPut, "/patients/"+id(patientID)+"/", in, &p)
	return p, err
}

func (c *HTTPClient) DeletePatient(ctx context.Context, patientID int64) error {
	return c.do(ctx, http.MethodDelete, "/patients/"+id(patientID)+"/", nil, nil)
}

func (c *HTTPClient) CreatePrediction(ctx context.Context, in models.PredictionInput) (models.PredictionDetail, error) {
	var p models.PredictionDetail
	err := c.do(ctx, http.MethodPost, "/predictions/", in, &p)
	return p, err
}

func (c *HTTPClient) ListPredictions(ctx context.Context) ([]models.Prediction, error) {
	var out []models.Prediction
	err := c.do(ctx, http.MethodGet, "/predictions/", nil, &out)
	return out, err
}

func (c *HTTPClient) GetPrediction(ctx context.Context, predictionID int64) (models.PredictionDetail, error) {
	var p models.PredictionDetail
	err := c.do(ctx, http.MethodGet, "/predictions/"+id(predictionID)+"/", nil, &p)
	return p, err
}

func (c *HTTPClient) ListPatientPredictions(ctx context.Context, patientID int64) ([]models.Prediction, error) {
	var out []models.Prediction
	err := c.do(ctx, http.MethodGet, "/predictions/patient/"+id(patientID)+"/", nil, &out)
	return out, err
}

// DownloadReport returns the PDF report of a prediction.
func (c *HTTPClient) DownloadReport(ctx context.Context, predictionID int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL+"/predictions/"+id(predictionID)+"/report", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read report: %v", ErrUnavailable, err)
	}
	return pdf, nil
}

// Health probes <base>/health.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
