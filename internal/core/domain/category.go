package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Category
// =============================================================================

// Category groups content within a tenant.
type Category struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates a category with a fresh id and timestamps. The slug is
// assigned by the caller after probing the store for uniqueness.
func NewCategory(clientID, name, description string) (*Category, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if clientID == "" {
		return nil, ErrClientIDRequired
	}

	ts := now()
	return &Category{
		ID:          "cat_" + uuid.New().String()[:8],
		ClientID:    clientID,
		Name:        name,
		Description: description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// Replace applies full-record update semantics: every caller-owned field is
// overwritten, server-owned fields (id, tenant, slug, creation time) keep
// their stored values, and the update timestamp is refreshed.
func (c *Category) Replace(name, description string) error {
	if name == "" {
		return ErrNameRequired
	}
	c.Name = name
	c.Description = description
	c.UpdatedAt = now()
	return nil
}
