package apiclient

import (
	"context"
	"net/http"
)

// TokenSource supplies the bearer token for outgoing requests. An empty token
// produces an unauthenticated request.
type TokenSource interface {
	Token(ctx context.Context) string
}

type StaticToken string

func (s StaticToken) Token(context.Context) string { return string(s) }

type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	tok := t.tokens.Token(req.Context())
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return t.base.RoundTrip(r)
}
