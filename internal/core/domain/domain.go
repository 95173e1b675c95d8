// Package domain contains the core entity types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O
// except the slug prober, which reads through a caller-supplied lookup.
package domain

import (
	"errors"
	"time"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrNameRequired        = errors.New("name is required")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrEmailRequired       = errors.New("email is required")
	ErrClientIDRequired    = errors.New("client id is required")
)

// =============================================================================
// Entity Kinds
// =============================================================================

// Kind identifies one of the persisted entity types. It doubles as the
// search-index collection name and the URL plural stem is derived from it.
type Kind string

const (
	KindCategory     Kind = "category"
	KindOrganization Kind = "organization"
	KindMedia        Kind = "media"
	KindDegaUser     Kind = "degauser"
)

// IsValid checks if the kind is one of the known entity types.
func (k Kind) IsValid() bool {
	switch k {
	case KindCategory, KindOrganization, KindMedia, KindDegaUser:
		return true
	default:
		return false
	}
}

// Plural returns the URL path segment for the kind.
func (k Kind) Plural() string {
	switch k {
	case KindCategory:
		return "categories"
	case KindMedia:
		return "media"
	default:
		return string(k) + "s"
	}
}

// now returns the current time in UTC, truncated to whole seconds so that
// RFC3339 round-trips through the stores are lossless.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
