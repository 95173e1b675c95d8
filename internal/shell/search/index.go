// Package search provides full-text lookup over stored entities. Writes go
// through the index on every create, update and delete so queries never see
// entities the store no longer has.
package search

import (
	"context"

	"github.com/degacms/dega/internal/core/domain"
)

// Document is the indexed projection of an entity. Only the fields queries
// match against are kept; the store remains the source of truth for the rest.
type Document struct {
	Kind        domain.Kind `json:"kind"`
	ID          string      `json:"id"`
	ClientID    string      `json:"client_id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
}

// Index maintains searchable documents per entity kind, scoped by tenant.
type Index interface {
	// Upsert adds or replaces a document.
	Upsert(ctx context.Context, doc Document) error

	// Delete removes a document. Deleting an unknown document is not an
	// error.
	Delete(ctx context.Context, kind domain.Kind, id string) error

	// Search returns the ids of matching documents for a tenant. An empty
	// clientID searches across tenants. Page is 0-based, like the store.
	Search(ctx context.Context, kind domain.Kind, clientID, query string, page, size int) ([]string, int, error)

	// Ping verifies the index is reachable.
	Ping(ctx context.Context) error
}
