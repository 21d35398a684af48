package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/glycorisk/riskdash/internal/apierr"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("backend unavailable")
)

// APIError is a non-2xx answer from the backend. It unwraps to the sentinel
// matching its status, if any.
type APIError struct {
	Status  int
	Payload apierr.Payload
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Payload.Message(http.StatusText(e.Status)))
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}

// Message reduces err to the line shown to the operator: the backend's own
// message when it sent one, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Payload.Message(fallback)
	}
	return fallback
}
