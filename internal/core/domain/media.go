package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Media
// =============================================================================

// Media describes a stored binary object. The bytes live in an external file
// store; the entity carries only the stored filename and download URL.
type Media struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name"` // stored filename
	Slug        string `json:"slug"`
	Type        string `json:"type,omitempty"` // content type of the upload
	URL         string `json:"url,omitempty"`
	FileSize    int64  `json:"file_size"`
	Description string `json:"description,omitempty"`
	UploadedBy  string `json:"uploaded_by,omitempty"`

	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMedia creates a media record for an uploaded file. PublishedAt defaults
// to the creation time; callers may edit it later through update.
func NewMedia(clientID, name, contentType, url, uploadedBy string, fileSize int64) (*Media, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if clientID == "" {
		return nil, ErrClientIDRequired
	}

	ts := now()
	return &Media{
		ID:          "media_" + uuid.New().String()[:8],
		ClientID:    clientID,
		Name:        name,
		Type:        contentType,
		URL:         url,
		FileSize:    fileSize,
		UploadedBy:  uploadedBy,
		PublishedAt: ts,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// Replace applies full-record update semantics. The stored filename, size and
// download URL describe the uploaded bytes and are server-owned.
func (m *Media) Replace(description string, publishedAt time.Time) {
	m.Description = description
	if !publishedAt.IsZero() {
		m.PublishedAt = publishedAt.UTC().Truncate(time.Second)
	}
	m.UpdatedAt = now()
}
