package api

import "time"

// =============================================================================
// Request Types
// =============================================================================

// CategoryRequest is the request body for creating or updating a category.
// ID must be empty on create and set on update.
type CategoryRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// OrganizationRequest is the request body for creating or updating an
// organization. MemberIDs is server-owned and not accepted here.
type OrganizationRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SiteTitle   string `json:"site_title,omitempty"`
	TagLine     string `json:"tag_line,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// MediaRequest is the request body for updating media metadata. The binary
// itself only changes through upload.
type MediaRequest struct {
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// DegaUserRequest is the request body for creating or updating a user.
// OrganizationIDs left null keeps existing memberships on update.
type DegaUserRequest struct {
	ID                    string   `json:"id,omitempty"`
	FirstName             string   `json:"first_name,omitempty"`
	LastName              string   `json:"last_name,omitempty"`
	DisplayName           string   `json:"display_name"`
	Email                 string   `json:"email"`
	Website               string   `json:"website,omitempty"`
	FacebookURL           string   `json:"facebook_url,omitempty"`
	TwitterURL            string   `json:"twitter_url,omitempty"`
	InstagramURL          string   `json:"instagram_url,omitempty"`
	LinkedinURL           string   `json:"linkedin_url,omitempty"`
	GithubURL             string   `json:"github_url,omitempty"`
	ProfilePicture        string   `json:"profile_picture,omitempty"`
	Description           string   `json:"description,omitempty"`
	IsActive              bool     `json:"is_active"`
	OrganizationIDs       []string `json:"organization_ids,omitempty"`
	OrganizationDefaultID string   `json:"organization_default_id,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrganizationResponse is the API representation of an organization.
type OrganizationResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SiteTitle   string    `json:"site_title"`
	TagLine     string    `json:"tag_line"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MediaResponse is the API representation of a media record.
type MediaResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	FileSize    int64     `json:"file_size"`
	Description string    `json:"description"`
	UploadedBy  string    `json:"uploaded_by"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DegaUserResponse is the API representation of a user.
type DegaUserResponse struct {
	ID                    string    `json:"id"`
	ClientID              string    `json:"client_id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	DisplayName           string    `json:"display_name"`
	Email                 string    `json:"email"`
	Slug                  string    `json:"slug"`
	Website               string    `json:"website"`
	FacebookURL           string    `json:"facebook_url"`
	TwitterURL            string    `json:"twitter_url"`
	InstagramURL          string    `json:"instagram_url"`
	LinkedinURL           string    `json:"linkedin_url"`
	GithubURL             string    `json:"github_url"`
	ProfilePicture        string    `json:"profile_picture"`
	Description           string    `json:"description"`
	IsActive              bool      `json:"is_active"`
	OrganizationIDs       []string  `json:"organization_ids"`
	OrganizationDefaultID string    `json:"organization_default_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for readiness checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
