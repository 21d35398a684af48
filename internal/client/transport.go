package client

import (
	"context"
	"net/http"
)

// TokenSource yields the bearer token for outbound calls, or "" for none.
type TokenSource interface {
	Token(ctx context.Context) string
}

// bearerTransport sets Authorization on every request whose token source has
// a usable token.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	token := t.tokens.Token(req.Context())
	if token == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(r)
}
