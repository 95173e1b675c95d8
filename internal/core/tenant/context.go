// Package tenant propagates the request's tenant scope through the context.
// The client id arrives on gateway-injected headers and is threaded as an
// explicit value; nothing reads it ambiently.
package tenant

import (
	"context"
	"net/http"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const tenantContextKey contextKey = "tenant"

// =============================================================================
// Types
// =============================================================================

// Context represents the tenant scope of a request. Every store lookup and
// slug probe is performed within one ClientID.
type Context struct {
	// ClientID is the tenant scoping key (from X-Client-ID, or the
	// configured default when the header is absent).
	ClientID string

	// UserID identifies the authenticated user (from X-User-ID). Media
	// uploads record it as the uploader. Empty for anonymous requests.
	UserID string
}

// =============================================================================
// Header Constants
// =============================================================================

const (
	// HeaderClientID carries the tenant scoping key.
	HeaderClientID = "X-Client-ID"

	// HeaderUserID carries the authenticated user's id.
	HeaderUserID = "X-User-ID"
)

// =============================================================================
// Extraction
// =============================================================================

// HeaderGetter is an interface for getting header values. It allows testing
// without constructing an http.Request.
type HeaderGetter interface {
	Get(key string) string
}

type headerGetter struct {
	r *http.Request
}

func (h headerGetter) Get(key string) string {
	return h.r.Header.Get(key)
}

// ExtractFromRequest extracts the tenant context from HTTP request headers,
// falling back to defaultClientID when no X-Client-ID header is present.
func ExtractFromRequest(r *http.Request, defaultClientID string) Context {
	return ExtractFromHeaders(headerGetter{r: r}, defaultClientID)
}

// ExtractFromHeaders extracts the tenant context using the HeaderGetter
// interface. This is a pure function.
func ExtractFromHeaders(headers HeaderGetter, defaultClientID string) Context {
	clientID := headers.Get(HeaderClientID)
	if clientID == "" {
		clientID = defaultClientID
	}
	return Context{
		ClientID: clientID,
		UserID:   headers.Get(HeaderUserID),
	}
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the tenant context in the request context.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext retrieves the tenant context. A missing value yields the zero
// Context; in practice the extraction middleware always fills ClientID with
// at least the configured default.
func FromContext(ctx context.Context) Context {
	if tc, ok := ctx.Value(tenantContextKey).(Context); ok {
		return tc
	}
	return Context{}
}

// =============================================================================
// Helper Types for Testing
// =============================================================================

// MapHeaderGetter wraps a map to implement HeaderGetter.
type MapHeaderGetter map[string]string

func (m MapHeaderGetter) Get(key string) string {
	return m[key]
}
