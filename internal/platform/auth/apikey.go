package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/payetonkawa/orders-api/internal/platform/httpx"
)

const defaultAPIKeyHeader = "x-api-key"

// APIKeyAuthenticator gates routes behind a shared API key carried in a header.
type APIKeyAuthenticator struct {
	key    string
	header string
}

// APIKeyOption customises the authenticator.
type APIKeyOption func(*APIKeyAuthenticator)

// WithAPIKeyHeader overrides the header inspected for the API key.
func WithAPIKeyHeader(header string) APIKeyOption {
	return func(a *APIKeyAuthenticator) {
		header = strings.TrimSpace(header)
		if header != "" {
			a.header = header
		}
	}
}

// NewAPIKeyAuthenticator constructs an authenticator comparing against the
// configured secret. An empty secret rejects every request, matching the
// behaviour of an unconfigured deployment.
func NewAPIKeyAuthenticator(key string, opts ...APIKeyOption) *APIKeyAuthenticator {
	a := &APIKeyAuthenticator{
		key:    key,
		header: defaultAPIKeyHeader,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireAPIKey returns middleware enforcing the API key check. Mismatch or
// absence yields the fixed 403 JSON body.
func (a *APIKeyAuthenticator) RequireAPIKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil || !a.matches(r.Header.Get(a.headerName())) {
				httpx.WriteForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *APIKeyAuthenticator) headerName() string {
	if a == nil || a.header == "" {
		return defaultAPIKeyHeader
	}
	return a.header
}

func (a *APIKeyAuthenticator) matches(candidate string) bool {
	if a == nil || a.key == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.key), []byte(candidate)) == 1
}
