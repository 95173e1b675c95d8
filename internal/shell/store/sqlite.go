package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite. It is the default backend; the
// UNIQUE (client_id, slug) indexes in the schema are what make the slug
// probe race-safe.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// writeError maps SQLite constraint failures onto the store sentinels.
func writeError(op, entity, id, table string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed: "+table+".id") {
		return NewStoreError(op, entity, id, entity+" with this ID already exists", ErrDuplicateID)
	}
	if strings.Contains(msg, "UNIQUE constraint failed: "+table+".client_id, "+table+".slug") {
		return NewStoreError(op, entity, id, entity+" with this slug already exists", ErrDuplicateSlug)
	}
	return NewStoreError(op, entity, id, msg, err)
}

// orderBy maps a sort option onto a whitelisted ORDER BY clause. nameCol is
// the column backing the "name" sort for the table.
func orderBy(sort, nameCol string) string {
	col := sort
	dir := "ASC"
	if i := strings.IndexByte(sort, ','); i >= 0 {
		col = sort[:i]
		if strings.EqualFold(strings.TrimSpace(sort[i+1:]), "desc") {
			dir = "DESC"
		}
	}
	switch col {
	case "name":
		col = nameCol
	case "slug", "created_at", "updated_at":
	default:
		col, dir = "created_at", "DESC"
	}
	return col + " " + dir
}

func parseStoredTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// =============================================================================
// Category Operations
// =============================================================================

// categoryRow represents a category row in the database.
type categoryRow struct {
	ID          string `db:"id"`
	ClientID    string `db:"client_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func categoryToRow(c *domain.Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"client_id":   c.ClientID,
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"created_at":  c.CreatedAt.Format(time.RFC3339),
		"updated_at":  c.UpdatedAt.Format(time.RFC3339),
	}
}

func rowToCategory(row *categoryRow) (*domain.Category, error) {
	createdAt, err := parseStoredTime(row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToCategory", "category", row.ID, "invalid created_at", ErrInvalidData)
	}
	updatedAt, err := parseStoredTime(row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToCategory", "category", row.ID, "invalid updated_at", ErrInvalidData)
	}

	return &domain.Category{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, client_id, name, slug, description, created_at, updated_at)
		VALUES (:id, :client_id, :name, :slug, :description, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, categoryToRow(c)); err != nil {
		return writeError("CreateCategory", "category", c.ID, "categories", err)
	}
	return nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM categories WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCategory", "category", id, "category not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCategory", "category", id, err.Error(), err)
	}
	return rowToCategory(&row)
}

func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, clientID, slug string) (*domain.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM categories WHERE client_id = ? AND slug = ?`, clientID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCategoryBySlug", "category", slug, "category not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCategoryBySlug", "category", slug, err.Error(), err)
	}
	return rowToCategory(&row)
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE categories SET
			client_id = :client_id,
			name = :name,
			slug = :slug,
			description = :description,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, query, categoryToRow(c))
	if err != nil {
		return writeError("UpdateCategory", "category", c.ID, "categories", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateCategory", "category", c.ID, "category not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteCategory", "category", id, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteCategory", "category", id, "category not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context, clientID string, opts PageOptions) ([]domain.Category, int, error) {
	opts = opts.Normalize()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM categories WHERE client_id = ?`, clientID); err != nil {
		return nil, 0, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}

	query := fmt.Sprintf(
		`SELECT * FROM categories WHERE client_id = ? ORDER BY %s LIMIT ? OFFSET ?`,
		orderBy(opts.Sort, "name"),
	)

	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, query, clientID, opts.Size, opts.Offset()); err != nil {
		return nil, 0, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for i := range rows {
		c, err := rowToCategory(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, *c)
	}
	return categories, total, nil
}

// =============================================================================
// Organization Operations
// =============================================================================

// organizationRow represents an organization row in the database. MemberIDs
// is stored as a JSON array.
type organizationRow struct {
	ID          string `db:"id"`
	ClientID    string `db:"client_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	SiteTitle   string `db:"site_title"`
	TagLine     string `db:"tag_line"`
	Email       string `db:"email"`
	Phone       string `db:"phone"`
	MemberIDs   string `db:"member_ids"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func organizationToRow(o *domain.Organization) (map[string]any, error) {
	memberIDs := o.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}
	memberJSON, err := json.Marshal(memberIDs)
	if err != nil {
		return nil, NewStoreError("organizationToRow", "organization", o.ID, "failed to serialize member ids", ErrInvalidData)
	}
	return map[string]any{
		"id":          o.ID,
		"client_id":   o.ClientID,
		"name":        o.Name,
		"slug":        o.Slug,
		"description": o.Description,
		"site_title":  o.SiteTitle,
		"tag_line":    o.TagLine,
		"email":       o.Email,
		"phone":       o.Phone,
		"member_ids":  string(memberJSON),
		"created_at":  o.CreatedAt.Format(time.RFC3339),
		"updated_at":  o.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func rowToOrganization(row *organizationRow) (*domain.Organization, error) {
	var memberIDs []string
	if err := json.Unmarshal([]byte(row.MemberIDs), &memberIDs); err != nil {
		return nil, NewStoreError("rowToOrganization", "organization", row.ID, "invalid member ids", ErrInvalidData)
	}
	createdAt, err := parseStoredTime(row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToOrganization", "organization", row.ID, "invalid created_at", ErrInvalidData)
	}
	updatedAt, err := parseStoredTime(row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToOrganization", "organization", row.ID, "invalid updated_at", ErrInvalidData)
	}

	return &domain.Organization{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		SiteTitle:   row.SiteTitle,
		TagLine:     row.TagLine,
		Email:       row.Email,
		Phone:       row.Phone,
		MemberIDs:   memberIDs,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *SQLiteStore) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	row, err := organizationToRow(o)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO organizations (
			id, client_id, name, slug, description, site_title, tag_line,
			email, phone, member_ids, created_at, updated_at
		) VALUES (
			:id, :client_id, :name, :slug, :description, :site_title, :tag_line,
			:email, :phone, :member_ids, :created_at, :updated_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return writeError("CreateOrganization", "organization", o.ID, "organizations", err)
	}
	return nil
}

func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	var row organizationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM organizations WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetOrganization", "organization", id, "organization not found", ErrNotFound)
		}
		return nil, NewStoreError("GetOrganization", "organization", id, err.Error(), err)
	}
	return rowToOrganization(&row)
}

func (s *SQLiteStore) GetOrganizationBySlug(ctx context.Context, clientID, slug string) (*domain.Organization, error) {
	var row organizationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM organizations WHERE client_id = ? AND slug = ?`, clientID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetOrganizationBySlug", "organization", slug, "organization not found", ErrNotFound)
		}
		return nil, NewStoreError("GetOrganizationBySlug", "organization", slug, err.Error(), err)
	}
	return rowToOrganization(&row)
}

func (s *SQLiteStore) UpdateOrganization(ctx context.Context, o *domain.Organization) error {
	row, err := organizationToRow(o)
	if err != nil {
		return err
	}

	query := `
		UPDATE organizations SET
			client_id = :client_id,
			name = :name,
			slug = :slug,
			description = :description,
			site_title = :site_title,
			tag_line = :tag_line,
			email = :email,
			phone = :phone,
			member_ids = :member_ids,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return writeError("UpdateOrganization", "organization", o.ID, "organizations", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateOrganization", "organization", o.ID, "organization not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteOrganization(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteOrganization", "organization", id, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteOrganization", "organization", id, "organization not found", ErrNotFound)
	}
	return nil
}

// ListOrganizations with an empty clientID lists across all tenants:
// organizations are the entities tenancy derives from.
func (s *SQLiteStore) ListOrganizations(ctx context.Context, clientID string, opts PageOptions) ([]domain.Organization, int, error) {
	opts = opts.Normalize()

	where := `WHERE client_id = ?`
	args := []any{clientID}
	if clientID == "" {
		where = ""
		args = nil
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM organizations `+where, args...); err != nil {
		return nil, 0, NewStoreError("ListOrganizations", "organization", "", err.Error(), err)
	}

	query := fmt.Sprintf(
		`SELECT * FROM organizations %s ORDER BY %s LIMIT ? OFFSET ?`,
		where, orderBy(opts.Sort, "name"),
	)

	var rows []organizationRow
	if err := s.db.SelectContext(ctx, &rows, query, append(args, opts.Size, opts.Offset())...); err != nil {
		return nil, 0, NewStoreError("ListOrganizations", "organization", "", err.Error(), err)
	}

	organizations := make([]domain.Organization, 0, len(rows))
	for i := range rows {
		o, err := rowToOrganization(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		organizations = append(organizations, *o)
	}
	return organizations, total, nil
}

// =============================================================================
// Media Operations
// =============================================================================

// mediaRow represents a media row in the database.
type mediaRow struct {
	ID          string `db:"id"`
	ClientID    string `db:"client_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Type        string `db:"type"`
	URL         string `db:"url"`
	FileSize    int64  `db:"file_size"`
	Description string `db:"description"`
	UploadedBy  string `db:"uploaded_by"`
	PublishedAt string `db:"published_at"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func mediaToRow(m *domain.Media) map[string]any {
	return map[string]any{
		"id":           m.ID,
		"client_id":    m.ClientID,
		"name":         m.Name,
		"slug":         m.Slug,
		"type":         m.Type,
		"url":          m.URL,
		"file_size":    m.FileSize,
		"description":  m.Description,
		"uploaded_by":  m.UploadedBy,
		"published_at": m.PublishedAt.Format(time.RFC3339),
		"created_at":   m.CreatedAt.Format(time.RFC3339),
		"updated_at":   m.UpdatedAt.Format(time.RFC3339),
	}
}

func rowToMedia(row *mediaRow) (*domain.Media, error) {
	publishedAt, err := parseStoredTime(row.PublishedAt)
	if err != nil {
		return nil, NewStoreError("rowToMedia", "media", row.ID, "invalid published_at", ErrInvalidData)
	}
	createdAt, err := parseStoredTime(row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToMedia", "media", row.ID, "invalid created_at", ErrInvalidData)
	}
	updatedAt, err := parseStoredTime(row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToMedia", "media", row.ID, "invalid updated_at", ErrInvalidData)
	}

	return &domain.Media{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Name:        row.Name,
		Slug:        row.Slug,
		Type:        row.Type,
		URL:         row.URL,
		FileSize:    row.FileSize,
		Description: row.Description,
		UploadedBy:  row.UploadedBy,
		PublishedAt: publishedAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *SQLiteStore) CreateMedia(ctx context.Context, m *domain.Media) error {
	query := `
		INSERT INTO media (
			id, client_id, name, slug, type, url, file_size, description,
			uploaded_by, published_at, created_at, updated_at
		) VALUES (
			:id, :client_id, :name, :slug, :type, :url, :file_size, :description,
			:uploaded_by, :published_at, :created_at, :updated_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, mediaToRow(m)); err != nil {
		return writeError("CreateMedia", "media", m.ID, "media", err)
	}
	return nil
}

func (s *SQLiteStore) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	var row mediaRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM media WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetMedia", "media", id, "media not found", ErrNotFound)
		}
		return nil, NewStoreError("GetMedia", "media", id, err.Error(), err)
	}
	return rowToMedia(&row)
}

func (s *SQLiteStore) GetMediaBySlug(ctx context.Context, clientID, slug string) (*domain.Media, error) {
	var row mediaRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM media WHERE client_id = ? AND slug = ?`, clientID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetMediaBySlug", "media", slug, "media not found", ErrNotFound)
		}
		return nil, NewStoreError("GetMediaBySlug", "media", slug, err.Error(), err)
	}
	return rowToMedia(&row)
}

func (s *SQLiteStore) UpdateMedia(ctx context.Context, m *domain.Media) error {
	query := `
		UPDATE media SET
			client_id = :client_id,
			name = :name,
			slug = :slug,
			type = :type,
			url = :url,
			file_size = :file_size,
			description = :description,
			uploaded_by = :uploaded_by,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, query, mediaToRow(m))
	if err != nil {
		return writeError("UpdateMedia", "media", m.ID, "media", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateMedia", "media", m.ID, "media not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteMedia", "media", id, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteMedia", "media", id, "media not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListMedia(ctx context.Context, clientID string, opts PageOptions) ([]domain.Media, int, error) {
	opts = opts.Normalize()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM media WHERE client_id = ?`, clientID); err != nil {
		return nil, 0, NewStoreError("ListMedia", "media", "", err.Error(), err)
	}

	query := fmt.Sprintf(
		`SELECT * FROM media WHERE client_id = ? ORDER BY %s LIMIT ? OFFSET ?`,
		orderBy(opts.Sort, "name"),
	)

	var rows []mediaRow
	if err := s.db.SelectContext(ctx, &rows, query, clientID, opts.Size, opts.Offset()); err != nil {
		return nil, 0, NewStoreError("ListMedia", "media", "", err.Error(), err)
	}

	media := make([]domain.Media, 0, len(rows))
	for i := range rows {
		m, err := rowToMedia(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		media = append(media, *m)
	}
	return media, total, nil
}

// =============================================================================
// DegaUser Operations
// =============================================================================

// degaUserRow represents a dega_users row. OrganizationIDs is stored as a
// JSON array.
type degaUserRow struct {
	ID                    string `db:"id"`
	ClientID              string `db:"client_id"`
	FirstName             string `db:"first_name"`
	LastName              string `db:"last_name"`
	DisplayName           string `db:"display_name"`
	Email                 string `db:"email"`
	Slug                  string `db:"slug"`
	Website               string `db:"website"`
	FacebookURL           string `db:"facebook_url"`
	TwitterURL            string `db:"twitter_url"`
	InstagramURL          string `db:"instagram_url"`
	LinkedinURL           string `db:"linkedin_url"`
	GithubURL             string `db:"github_url"`
	ProfilePicture        string `db:"profile_picture"`
	Description           string `db:"description"`
	IsActive              bool   `db:"is_active"`
	OrganizationIDs       string `db:"organization_ids"`
	OrganizationDefaultID string `db:"organization_default_id"`
	CreatedAt             string `db:"created_at"`
	UpdatedAt             string `db:"updated_at"`
}

func degaUserToRow(u *domain.DegaUser) (map[string]any, error) {
	orgIDs := u.OrganizationIDs
	if orgIDs == nil {
		orgIDs = []string{}
	}
	orgJSON, err := json.Marshal(orgIDs)
	if err != nil {
		return nil, NewStoreError("degaUserToRow", "degauser", u.ID, "failed to serialize organization ids", ErrInvalidData)
	}
	return map[string]any{
		"id":                      u.ID,
		"client_id":               u.ClientID,
		"first_name":              u.FirstName,
		"last_name":               u.LastName,
		"display_name":            u.DisplayName,
		"email":                   u.Email,
		"slug":                    u.Slug,
		"website":                 u.Website,
		"facebook_url":            u.FacebookURL,
		"twitter_url":             u.TwitterURL,
		"instagram_url":           u.InstagramURL,
		"linkedin_url":            u.LinkedinURL,
		"github_url":              u.GithubURL,
		"profile_picture":         u.ProfilePicture,
		"description":             u.Description,
		"is_active":               u.IsActive,
		"organization_ids":        string(orgJSON),
		"organization_default_id": u.OrganizationDefaultID,
		"created_at":              u.CreatedAt.Format(time.RFC3339),
		"updated_at":              u.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func rowToDegaUser(row *degaUserRow) (*domain.DegaUser, error) {
	var orgIDs []string
	if err := json.Unmarshal([]byte(row.OrganizationIDs), &orgIDs); err != nil {
		return nil, NewStoreError("rowToDegaUser", "degauser", row.ID, "invalid organization ids", ErrInvalidData)
	}
	createdAt, err := parseStoredTime(row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToDegaUser", "degauser", row.ID, "invalid created_at", ErrInvalidData)
	}
	updatedAt, err := parseStoredTime(row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToDegaUser", "degauser", row.ID, "invalid updated_at", ErrInvalidData)
	}

	return &domain.DegaUser{
		ID:                    row.ID,
		ClientID:              row.ClientID,
		FirstName:             row.FirstName,
		LastName:              row.LastName,
		DisplayName:           row.DisplayName,
		Email:                 row.Email,
		Slug:                  row.Slug,
		Website:               row.Website,
		FacebookURL:           row.FacebookURL,
		TwitterURL:            row.TwitterURL,
		InstagramURL:          row.InstagramURL,
		LinkedinURL:           row.LinkedinURL,
		GithubURL:             row.GithubURL,
		ProfilePicture:        row.ProfilePicture,
		Description:           row.Description,
		IsActive:              row.IsActive,
		OrganizationIDs:       orgIDs,
		OrganizationDefaultID: row.OrganizationDefaultID,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}, nil
}

func (s *SQLiteStore) CreateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	row, err := degaUserToRow(u)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dega_users (
			id, client_id, first_name, last_name, display_name, email, slug,
			website, facebook_url, twitter_url, instagram_url, linkedin_url,
			github_url, profile_picture, description, is_active,
			organization_ids, organization_default_id, created_at, updated_at
		) VALUES (
			:id, :client_id, :first_name, :last_name, :display_name, :email, :slug,
			:website, :facebook_url, :twitter_url, :instagram_url, :linkedin_url,
			:github_url, :profile_picture, :description, :is_active,
			:organization_ids, :organization_default_id, :created_at, :updated_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return writeError("CreateDegaUser", "degauser", u.ID, "dega_users", err)
	}
	return nil
}

func (s *SQLiteStore) GetDegaUser(ctx context.Context, id string) (*domain.DegaUser, error) {
	var row degaUserRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM dega_users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetDegaUser", "degauser", id, "user not found", ErrNotFound)
		}
		return nil, NewStoreError("GetDegaUser", "degauser", id, err.Error(), err)
	}
	return rowToDegaUser(&row)
}

func (s *SQLiteStore) GetDegaUserBySlug(ctx context.Context, clientID, slug string) (*domain.DegaUser, error) {
	var row degaUserRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM dega_users WHERE client_id = ? AND slug = ?`, clientID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetDegaUserBySlug", "degauser", slug, "user not found", ErrNotFound)
		}
		return nil, NewStoreError("GetDegaUserBySlug", "degauser", slug, err.Error(), err)
	}
	return rowToDegaUser(&row)
}

func (s *SQLiteStore) UpdateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	row, err := degaUserToRow(u)
	if err != nil {
		return err
	}

	query := `
		UPDATE dega_users SET
			client_id = :client_id,
			first_name = :first_name,
			last_name = :last_name,
			display_name = :display_name,
			email = :email,
			slug = :slug,
			website = :website,
			facebook_url = :facebook_url,
			twitter_url = :twitter_url,
			instagram_url = :instagram_url,
			linkedin_url = :linkedin_url,
			github_url = :github_url,
			profile_picture = :profile_picture,
			description = :description,
			is_active = :is_active,
			organization_ids = :organization_ids,
			organization_default_id = :organization_default_id,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return writeError("UpdateDegaUser", "degauser", u.ID, "dega_users", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateDegaUser", "degauser", u.ID, "user not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteDegaUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dega_users WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteDegaUser", "degauser", id, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteDegaUser", "degauser", id, "user not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListDegaUsers(ctx context.Context, clientID string, opts PageOptions) ([]domain.DegaUser, int, error) {
	opts = opts.Normalize()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM dega_users WHERE client_id = ?`, clientID); err != nil {
		return nil, 0, NewStoreError("ListDegaUsers", "degauser", "", err.Error(), err)
	}

	query := fmt.Sprintf(
		`SELECT * FROM dega_users WHERE client_id = ? ORDER BY %s LIMIT ? OFFSET ?`,
		orderBy(opts.Sort, "display_name"),
	)

	var rows []degaUserRow
	if err := s.db.SelectContext(ctx, &rows, query, clientID, opts.Size, opts.Offset()); err != nil {
		return nil, 0, NewStoreError("ListDegaUsers", "degauser", "", err.Error(), err)
	}

	users := make([]domain.DegaUser, 0, len(rows))
	for i := range rows {
		u, err := rowToDegaUser(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, nil
}
