package store

import (
	"context"

	"github.com/degacms/dega/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for Dega entities. Slug lookups are
// tenant-scoped; List operations return the page plus the total count within
// the tenant so handlers can emit pagination headers.
type Store interface {
	// Category operations
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, clientID, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, clientID string, opts PageOptions) ([]domain.Category, int, error)

	// Organization operations
	CreateOrganization(ctx context.Context, o *domain.Organization) error
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, clientID, slug string) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, o *domain.Organization) error
	DeleteOrganization(ctx context.Context, id string) error
	// ListOrganizations with an empty clientID lists all tenants.
	ListOrganizations(ctx context.Context, clientID string, opts PageOptions) ([]domain.Organization, int, error)

	// Media operations
	CreateMedia(ctx context.Context, m *domain.Media) error
	GetMedia(ctx context.Context, id string) (*domain.Media, error)
	GetMediaBySlug(ctx context.Context, clientID, slug string) (*domain.Media, error)
	UpdateMedia(ctx context.Context, m *domain.Media) error
	DeleteMedia(ctx context.Context, id string) error
	ListMedia(ctx context.Context, clientID string, opts PageOptions) ([]domain.Media, int, error)

	// DegaUser operations
	CreateDegaUser(ctx context.Context, u *domain.DegaUser) error
	GetDegaUser(ctx context.Context, id string) (*domain.DegaUser, error)
	GetDegaUserBySlug(ctx context.Context, clientID, slug string) (*domain.DegaUser, error)
	UpdateDegaUser(ctx context.Context, u *domain.DegaUser) error
	DeleteDegaUser(ctx context.Context, id string) error
	ListDegaUsers(ctx context.Context, clientID string, opts PageOptions) ([]domain.DegaUser, int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// DefaultPageSize is the page size applied when none is requested.
const DefaultPageSize = 20

// MaxPageSize caps the requested page size.
const MaxPageSize = 200

// PageOptions defines pagination and ordering for list queries. Page is
// zero-based.
type PageOptions struct {
	Page int
	Size int
	Sort string // "name", "created_at" or "updated_at", optionally ",desc"
}

// DefaultPageOptions returns the first page with the default size.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		Page: 0,
		Size: DefaultPageSize,
		Sort: "created_at,desc",
	}
}

// Normalize ensures page options have valid values.
func (o PageOptions) Normalize() PageOptions {
	if o.Page < 0 {
		o.Page = 0
	}
	if o.Size <= 0 {
		o.Size = DefaultPageSize
	}
	if o.Size > MaxPageSize {
		o.Size = MaxPageSize
	}
	if o.Sort == "" {
		o.Sort = "created_at,desc"
	}
	return o
}

// Offset returns the row offset for the page.
func (o PageOptions) Offset() int {
	return o.Page * o.Size
}
