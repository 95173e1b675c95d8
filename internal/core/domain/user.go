package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DegaUser
// =============================================================================

// DegaUser is an editorial user. The user side owns the many-to-many relation
// to organizations: OrganizationIDs mirrors Organization.MemberIDs, and the
// membership mutators keep the two sides consistent. OrganizationDefaultID is
// a plain reference, not ownership; it is never required to be a member.
type DegaUser struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`

	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Slug        string `json:"slug"`

	Website      string `json:"website,omitempty"`
	FacebookURL  string `json:"facebook_url,omitempty"`
	TwitterURL   string `json:"twitter_url,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
	LinkedinURL  string `json:"linkedin_url,omitempty"`
	GithubURL    string `json:"github_url,omitempty"`

	ProfilePicture string `json:"profile_picture,omitempty"`
	Description    string `json:"description,omitempty"`
	IsActive       bool   `json:"is_active"`

	OrganizationIDs       []string `json:"organization_ids,omitempty"`
	OrganizationDefaultID string   `json:"organization_default_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile carries the caller-owned fields of a DegaUser for create and
// full-record replace.
type UserProfile struct {
	FirstName      string
	LastName       string
	DisplayName    string
	Email          string
	Website        string
	FacebookURL    string
	TwitterURL     string
	InstagramURL   string
	LinkedinURL    string
	GithubURL      string
	ProfilePicture string
	Description    string
	IsActive       bool
}

// NewDegaUser creates a user with a fresh id and timestamps. The slug is
// assigned by the caller after probing; it derives from DisplayName.
func NewDegaUser(clientID string, p UserProfile) (*DegaUser, error) {
	if p.DisplayName == "" {
		return nil, ErrDisplayNameRequired
	}
	if p.Email == "" {
		return nil, ErrEmailRequired
	}
	if clientID == "" {
		return nil, ErrClientIDRequired
	}

	u := &DegaUser{
		ID:       "user_" + uuid.New().String()[:8],
		ClientID: clientID,
	}
	u.apply(p)
	u.CreatedAt = u.UpdatedAt
	return u, nil
}

// Replace applies full-record update semantics for the profile fields.
// Membership and the default organization are updated separately so the
// bidirectional invariant stays in one place.
func (u *DegaUser) Replace(p UserProfile) error {
	if p.DisplayName == "" {
		return ErrDisplayNameRequired
	}
	if p.Email == "" {
		return ErrEmailRequired
	}
	u.apply(p)
	return nil
}

func (u *DegaUser) apply(p UserProfile) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.DisplayName = p.DisplayName
	u.Email = p.Email
	u.Website = p.Website
	u.FacebookURL = p.FacebookURL
	u.TwitterURL = p.TwitterURL
	u.InstagramURL = p.InstagramURL
	u.LinkedinURL = p.LinkedinURL
	u.GithubURL = p.GithubURL
	u.ProfilePicture = p.ProfilePicture
	u.Description = p.Description
	u.IsActive = p.IsActive
	u.UpdatedAt = now()
}
