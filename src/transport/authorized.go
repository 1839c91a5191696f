package transport

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer credential. An empty string means
// no session exists.
type TokenSource interface {
	Token() string
}

// AuthorizedRoundTripper attaches the bearer credential to every outgoing
// request except the auth bootstrap endpoints. It performs no I/O of its own
// beyond delegating to the base transport.
type AuthorizedRoundTripper struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

// NewAuthorizedRoundTripper wraps base (http.DefaultTransport when nil).
func NewAuthorizedRoundTripper(base http.RoundTripper, tokens TokenSource) *AuthorizedRoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthorizedRoundTripper{Base: base, Tokens: tokens}
}

// RoundTrip implements http.RoundTripper. Existing headers are preserved;
// the request is cloned before mutation as RoundTripper contracts require.
func (a *AuthorizedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAuthBootstrapPath(req.URL.Path) {
		return a.Base.RoundTrip(req)
	}

	cloned := req.Clone(req.Context())
	if cloned.Header.Get("X-Request-ID") == "" {
		cloned.Header.Set("X-Request-ID", uuid.NewString())
	}
	if token := a.Tokens.Token(); token != "" {
		cloned.Header.Set("Authorization", "Bearer "+token)
	}
	return a.Base.RoundTrip(cloned)
}

// isAuthBootstrapPath reports whether the request targets login or register.
// Credentials are never attached there.
func isAuthBootstrapPath(path string) bool {
	return strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/register")
}
