package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Organization
// =============================================================================

// Organization is a tenant-owning publisher. Its ClientID is set to its own
// slug at creation time, making the organization the root of its tenant.
type Organization struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	SiteTitle   string    `json:"site_title,omitempty"`
	TagLine     string    `json:"tag_line,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`

	// MemberIDs holds the ids of the users that belong to this organization.
	// It mirrors DegaUser.OrganizationIDs; the membership mutators keep the
	// two sides consistent.
	MemberIDs []string `json:"member_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrganization creates an organization with a fresh id and timestamps.
// Slug and ClientID are assigned by the caller once the slug has been probed:
// both carry the same value.
func NewOrganization(name, description, siteTitle, tagLine, email, phone string) (*Organization, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	ts := now()
	return &Organization{
		ID:          "org_" + uuid.New().String()[:8],
		Name:        name,
		Description: description,
		SiteTitle:   siteTitle,
		TagLine:     tagLine,
		Email:       email,
		Phone:       phone,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// Replace applies full-record update semantics. Membership is server-owned
// and maintained through the user side; see AddOrganization.
func (o *Organization) Replace(name, description, siteTitle, tagLine, email, phone string) error {
	if name == "" {
		return ErrNameRequired
	}
	o.Name = name
	o.Description = description
	o.SiteTitle = siteTitle
	o.TagLine = tagLine
	o.Email = email
	o.Phone = phone
	o.UpdatedAt = now()
	return nil
}
