package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/degacms/dega/internal/core/tenant"
	"github.com/degacms/dega/internal/shell/files"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/degacms/dega/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

// stubStore implements store.Store for testing.
type stubStore struct {
	categories    map[string]*domain.Category
	organizations map[string]*domain.Organization
	media         map[string]*domain.Media
	users         map[string]*domain.DegaUser
	err           error // If set, all operations return this error
}

func newStubStore() *stubStore {
	return &stubStore{
		categories:    make(map[string]*domain.Category),
		organizations: make(map[string]*domain.Organization),
		media:         make(map[string]*domain.Media),
		users:         make(map[string]*domain.DegaUser),
	}
}

func (s *stubStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	if s.err != nil {
		return s.err
	}
	for _, other := range s.categories {
		if other.ClientID == c.ClientID && other.Slug == c.Slug {
			return store.NewStoreError("CreateCategory", "category", c.ID, "slug taken", store.ErrDuplicateSlug)
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *stubStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, store.NewStoreError("GetCategory", "category", id, "not found", store.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *stubStore) GetCategoryBySlug(ctx context.Context, clientID, slug string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.categories {
		if c.ClientID == clientID && c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.NewStoreError("GetCategoryBySlug", "category", slug, "not found", store.ErrNotFound)
}

func (s *stubStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.categories[c.ID]; !ok {
		return store.NewStoreError("UpdateCategory", "category", c.ID, "not found", store.ErrNotFound)
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *stubStore) DeleteCategory(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.categories[id]; !ok {
		return store.NewStoreError("DeleteCategory", "category", id, "not found", store.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *stubStore) ListCategories(ctx context.Context, clientID string, opts store.PageOptions) ([]domain.Category, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	opts = opts.Normalize()
	var all []domain.Category
	for _, c := range s.categories {
		if c.ClientID == clientID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageSlice(all, opts), len(all), nil
}

func (s *stubStore) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	if s.err != nil {
		return s.err
	}
	for _, other := range s.organizations {
		if other.ClientID == o.ClientID && other.Slug == o.Slug {
			return store.NewStoreError("CreateOrganization", "organization", o.ID, "slug taken", store.ErrDuplicateSlug)
		}
	}
	cp := *o
	s.organizations[o.ID] = &cp
	return nil
}

func (s *stubStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.organizations[id]
	if !ok {
		return nil, store.NewStoreError("GetOrganization", "organization", id, "not found", store.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) GetOrganizationBySlug(ctx context.Context, clientID, slug string) (*domain.Organization, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, o := range s.organizations {
		if o.ClientID == clientID && o.Slug == slug {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.NewStoreError("GetOrganizationBySlug", "organization", slug, "not found", store.ErrNotFound)
}

func (s *stubStore) UpdateOrganization(ctx context.Context, o *domain.Organization) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.organizations[o.ID]; !ok {
		return store.NewStoreError("UpdateOrganization", "organization", o.ID, "not found", store.ErrNotFound)
	}
	cp := *o
	s.organizations[o.ID] = &cp
	return nil
}

func (s *stubStore) DeleteOrganization(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.organizations[id]; !ok {
		return store.NewStoreError("DeleteOrganization", "organization", id, "not found", store.ErrNotFound)
	}
	delete(s.organizations, id)
	return nil
}

func (s *stubStore) ListOrganizations(ctx context.Context, clientID string, opts store.PageOptions) ([]domain.Organization, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	opts = opts.Normalize()
	var all []domain.Organization
	for _, o := range s.organizations {
		if clientID == "" || o.ClientID == clientID {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageSlice(all, opts), len(all), nil
}

func (s *stubStore) CreateMedia(ctx context.Context, m *domain.Media) error {
	if s.err != nil {
		return s.err
	}
	for _, other := range s.media {
		if other.ClientID == m.ClientID && other.Slug == m.Slug {
			return store.NewStoreError("CreateMedia", "media", m.ID, "slug taken", store.ErrDuplicateSlug)
		}
	}
	cp := *m
	s.media[m.ID] = &cp
	return nil
}

func (s *stubStore) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.media[id]
	if !ok {
		return nil, store.NewStoreError("GetMedia", "media", id, "not found", store.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *stubStore) GetMediaBySlug(ctx context.Context, clientID, slug string) (*domain.Media, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, m := range s.media {
		if m.ClientID == clientID && m.Slug == slug {
			cp := *m
			return &cp, nil
		}
	}
	return nil, store.NewStoreError("GetMediaBySlug", "media", slug, "not found", store.ErrNotFound)
}

func (s *stubStore) UpdateMedia(ctx context.Context, m *domain.Media) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.media[m.ID]; !ok {
		return store.NewStoreError("UpdateMedia", "media", m.ID, "not found", store.ErrNotFound)
	}
	cp := *m
	s.media[m.ID] = &cp
	return nil
}

func (s *stubStore) DeleteMedia(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.media[id]; !ok {
		return store.NewStoreError("DeleteMedia", "media", id, "not found", store.ErrNotFound)
	}
	delete(s.media, id)
	return nil
}

func (s *stubStore) ListMedia(ctx context.Context, clientID string, opts store.PageOptions) ([]domain.Media, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	opts = opts.Normalize()
	var all []domain.Media
	for _, m := range s.media {
		if m.ClientID == clientID {
			all = append(all, *m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageSlice(all, opts), len(all), nil
}

func (s *stubStore) CreateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	if s.err != nil {
		return s.err
	}
	for _, other := range s.users {
		if other.ClientID == u.ClientID && other.Slug == u.Slug {
			return store.NewStoreError("CreateDegaUser", "degauser", u.ID, "slug taken", store.ErrDuplicateSlug)
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubStore) GetDegaUser(ctx context.Context, id string) (*domain.DegaUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.NewStoreError("GetDegaUser", "degauser", id, "not found", store.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *stubStore) GetDegaUserBySlug(ctx context.Context, clientID, slug string) (*domain.DegaUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.ClientID == clientID && u.Slug == slug {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.NewStoreError("GetDegaUserBySlug", "degauser", slug, "not found", store.ErrNotFound)
}

func (s *stubStore) UpdateDegaUser(ctx context.Context, u *domain.DegaUser) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[u.ID]; !ok {
		return store.NewStoreError("UpdateDegaUser", "degauser", u.ID, "not found", store.ErrNotFound)
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubStore) DeleteDegaUser(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[id]; !ok {
		return store.NewStoreError("DeleteDegaUser", "degauser", id, "not found", store.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *stubStore) ListDegaUsers(ctx context.Context, clientID string, opts store.PageOptions) ([]domain.DegaUser, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	opts = opts.Normalize()
	var all []domain.DegaUser
	for _, u := range s.users {
		if u.ClientID == clientID {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DisplayName < all[j].DisplayName })
	return pageSlice(all, opts), len(all), nil
}

func (s *stubStore) Ping(ctx context.Context) error { return s.err }

func (s *stubStore) Close() error { return nil }

func pageSlice[T any](all []T, opts store.PageOptions) []T {
	start := opts.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + opts.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

type testEnv struct {
	handler *Handler
	store   *stubStore
	index   *search.MemoryIndex
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newStubStore()
	idx := search.NewMemoryIndex()
	fs, err := files.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(Config{
		Store:     st,
		Index:     idx,
		Files:     fs,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		PublicURL: "http://localhost:8080",
	})

	return &testEnv{handler: h, store: st, index: idx, router: h.Routes()}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func parseResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// =============================================================================
// Category Tests
// =============================================================================

func TestCreateCategory(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{
		Name:        "Tech & Science",
		Description: "all things tech",
	}), nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := parseResponse[CategoryResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Tech & Science", resp.Name)
	assert.Equal(t, "TechScience", resp.Slug)
	assert.Equal(t, "main", resp.ClientID)
	assert.Equal(t, "/api/categories/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, "dega.category.created", rec.Header().Get("X-Dega-Alert"))
	assert.Equal(t, resp.ID, rec.Header().Get("X-Dega-Params"))
}

func TestCreateCategorySlugCollisionGetsSuffix(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech & Science"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "TechScience", parseResponse[CategoryResponse](t, rec).Slug)

	rec = e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech! Science"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "TechScience1", parseResponse[CategoryResponse](t, rec).Slug)

	rec = e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech?Science"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "TechScience2", parseResponse[CategoryResponse](t, rec).Slug)
}

func TestCreateCategoryRejectsID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{
		ID:   "cat_12345678",
		Name: "Tech",
	}), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", parseResponse[ErrorResponse](t, rec).Code)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategory(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech"}), nil)
	created := parseResponse[CategoryResponse](t, rec)

	rec = e.do(t, http.MethodPut, "/api/categories", jsonBody(t, CategoryRequest{
		ID:          created.ID,
		Name:        "Science",
		Description: "renamed",
	}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := parseResponse[CategoryResponse](t, rec)
	assert.Equal(t, "Science", updated.Name)
	assert.Equal(t, "renamed", updated.Description)
	// Server-owned fields survive the replace.
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, created.ClientID, updated.ClientID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "dega.category.updated", rec.Header().Get("X-Dega-Alert"))
}

func TestUpdateCategoryRequiresID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPut, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech"}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategoryUnknownID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPut, "/api/categories", jsonBody(t, CategoryRequest{
		ID:   "cat_missing",
		Name: "Tech",
	}), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCategoryNotFound(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/categories/cat_missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", parseResponse[ErrorResponse](t, rec).Code)
}

func TestDeleteCategoryUnknownIDSucceeds(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodDelete, "/api/categories/cat_missing", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dega.category.deleted", rec.Header().Get("X-Dega-Alert"))
}

func TestDeleteCategoryRemovesFromIndex(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech"}), nil)
	created := parseResponse[CategoryResponse](t, rec)

	rec = e.do(t, http.MethodGet, "/api/_search/categories?query=tech", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, parseResponse[[]CategoryResponse](t, rec), 1)

	rec = e.do(t, http.MethodDelete, "/api/categories/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/_search/categories?query=tech", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, parseResponse[[]CategoryResponse](t, rec))
}

func TestGetCategoryBySlug(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech & Science"}), nil)
	created := parseResponse[CategoryResponse](t, rec)

	rec = e.do(t, http.MethodGet, "/api/categorybyslug/TechScience", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, parseResponse[CategoryResponse](t, rec).ID)

	rec = e.do(t, http.MethodGet, "/api/categorybyslug/Missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCategoryBySlugScopedToTenant(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech"}),
		map[string]string{tenant.HeaderClientID: "alpha"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/categorybyslug/Tech", nil,
		map[string]string{tenant.HeaderClientID: "alpha"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/categorybyslug/Tech", nil,
		map[string]string{tenant.HeaderClientID: "beta"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCategoriesPaginationHeaders(t *testing.T) {
	e := newTestEnv(t)

	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	for _, name := range names {
		rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: name}), nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/categories?page=1&size=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "3", rec.Header().Get("X-Total-Pages"))

	link := rec.Header().Get("Link")
	assert.Contains(t, link, `rel="first"`)
	assert.Contains(t, link, `rel="prev"`)
	assert.Contains(t, link, `rel="next"`)
	assert.Contains(t, link, `rel="last"`)

	list := parseResponse[[]CategoryResponse](t, rec)
	assert.Len(t, list, 2)
}

func TestSearchCategoriesRoutedToIndex(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Tech News", Description: "gadgets"}), nil)
	created := parseResponse[CategoryResponse](t, rec)
	rec = e.do(t, http.MethodPost, "/api/categories", jsonBody(t, CategoryRequest{Name: "Politics"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/_search/categories?query=gadgets", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := parseResponse[[]CategoryResponse](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, created.ID, results[0].ID)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	// The query is echoed through the Link header URLs.
	assert.Contains(t, rec.Header().Get("Link"), "query=gadgets")
}

// =============================================================================
// Organization Tests
// =============================================================================

func TestCreateOrganizationSetsClientIDToSlug(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{
		Name:      "Factly Media",
		SiteTitle: "Factly",
	}), nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := parseResponse[OrganizationResponse](t, rec)
	assert.Equal(t, "FactlyMedia", resp.Slug)
	assert.Equal(t, "FactlyMedia", resp.ClientID)
	assert.Empty(t, resp.MemberIDs)
}

func TestGetOrganizationBySlug(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: "Factly"}), nil)
	created := parseResponse[OrganizationResponse](t, rec)

	rec = e.do(t, http.MethodGet, "/api/organizationbyslug/Factly", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, parseResponse[OrganizationResponse](t, rec).ID)
}

func TestDeleteOrganizationPrunesMembers(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: "Factly"}), nil)
	org := parseResponse[OrganizationResponse](t, rec)

	// Several members, so pruning must survive the member set shrinking
	// while it is walked.
	userIDs := make([]string, 0, 3)
	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Edsger Dijkstra"} {
		rec = e.do(t, http.MethodPost, "/api/degausers", jsonBody(t, DegaUserRequest{
			DisplayName:     name,
			Email:           name + "@example.com",
			OrganizationIDs: []string{org.ID},
		}), nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		user := parseResponse[DegaUserResponse](t, rec)
		assert.Equal(t, []string{org.ID}, user.OrganizationIDs)
		userIDs = append(userIDs, user.ID)
	}

	rec = e.do(t, http.MethodDelete, "/api/organizations/"+org.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, userID := range userIDs {
		rec = e.do(t, http.MethodGet, "/api/degausers/"+userID, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, parseResponse[DegaUserResponse](t, rec).OrganizationIDs)
	}
}

// =============================================================================
// DegaUser Tests
// =============================================================================

func TestCreateDegaUserWithMemberships(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: "Factly"}), nil)
	org := parseResponse[OrganizationResponse](t, rec)

	rec = e.do(t, http.MethodPost, "/api/degausers", jsonBody(t, DegaUserRequest{
		DisplayName:           "Ada Lovelace",
		Email:                 "ada@example.com",
		OrganizationIDs:       []string{org.ID},
		OrganizationDefaultID: org.ID,
		IsActive:              true,
	}), nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	user := parseResponse[DegaUserResponse](t, rec)
	assert.Equal(t, "AdaLovelace", user.Slug)
	assert.Equal(t, []string{org.ID}, user.OrganizationIDs)
	assert.Equal(t, org.ID, user.OrganizationDefaultID)

	// Membership is mirrored on the organization side.
	rec = e.do(t, http.MethodGet, "/api/organizations/"+org.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{user.ID}, parseResponse[OrganizationResponse](t, rec).MemberIDs)
}

func TestCreateDegaUserUnknownOrganization(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/degausers", jsonBody(t, DegaUserRequest{
		DisplayName:     "Ada",
		Email:           "ada@example.com",
		OrganizationIDs: []string{"org_missing"},
	}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected create must not leave a record behind.
	assert.Empty(t, e.store.users)
	rec = e.do(t, http.MethodGet, "/api/degausers", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, parseResponse[[]DegaUserResponse](t, rec))
}

func TestUpdateDegaUserReconcilesMemberships(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: "First Org"}), nil)
	first := parseResponse[OrganizationResponse](t, rec)
	rec = e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: "Second Org"}), nil)
	second := parseResponse[OrganizationResponse](t, rec)

	rec = e.do(t, http.MethodPost, "/api/degausers", jsonBody(t, DegaUserRequest{
		DisplayName:     "Ada",
		Email:           "ada@example.com",
		OrganizationIDs: []string{first.ID},
	}), nil)
	user := parseResponse[DegaUserResponse](t, rec)

	rec = e.do(t, http.MethodPut, "/api/degausers", jsonBody(t, DegaUserRequest{
		ID:              user.ID,
		DisplayName:     "Ada",
		Email:           "ada@example.com",
		OrganizationIDs: []string{second.ID},
	}), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{second.ID}, parseResponse[DegaUserResponse](t, rec).OrganizationIDs)

	rec = e.do(t, http.MethodGet, "/api/organizations/"+first.ID, nil, nil)
	assert.Empty(t, parseResponse[OrganizationResponse](t, rec).MemberIDs)

	rec = e.do(t, http.MethodGet, "/api/organizations/"+second.ID, nil, nil)
	assert.Equal(t, []string{user.ID}, parseResponse[OrganizationResponse](t, rec).MemberIDs)
}

func TestDeleteDegaUserPrunesOrganizations(t *testing.T) {
	e := newTestEnv(t)

	// Membership in several organizations; pruning walks the set it shrinks.
	orgIDs := make([]string, 0, 3)
	for _, name := range []string{"First Org", "Second Org", "Third Org"} {
		rec := e.do(t, http.MethodPost, "/api/organizations", jsonBody(t, OrganizationRequest{Name: name}), nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		orgIDs = append(orgIDs, parseResponse[OrganizationResponse](t, rec).ID)
	}

	rec := e.do(t, http.MethodPost, "/api/degausers", jsonBody(t, DegaUserRequest{
		DisplayName:     "Ada",
		Email:           "ada@example.com",
		OrganizationIDs: orgIDs,
	}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	user := parseResponse[DegaUserResponse](t, rec)
	assert.ElementsMatch(t, orgIDs, user.OrganizationIDs)

	rec = e.do(t, http.MethodDelete, "/api/degausers/"+user.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, orgID := range orgIDs {
		rec = e.do(t, http.MethodGet, "/api/organizations/"+orgID, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, parseResponse[OrganizationResponse](t, rec).MemberIDs)
	}
}

// =============================================================================
// Media Tests
// =============================================================================

func uploadFile(t *testing.T, e *testEnv, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(tenant.HeaderUserID, "usr_1")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadMedia(t *testing.T) {
	e := newTestEnv(t)

	rec := uploadFile(t, e, "team photo.jpg", "image/jpeg", "jpeg bytes")
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := parseResponse[MediaResponse](t, rec)
	assert.Equal(t, "teamphoto.jpg", resp.Name)
	assert.Equal(t, "teamphotojpg", resp.Slug)
	assert.Equal(t, "image/jpeg", resp.Type)
	assert.Equal(t, int64(10), resp.FileSize)
	assert.Equal(t, "usr_1", resp.UploadedBy)
	assert.Equal(t, "http://localhost:8080/api/media/download/teamphoto.jpg", resp.URL)
	assert.Equal(t, "/api/media/"+resp.ID, rec.Header().Get("Location"))
}

func TestUploadMediaMissingFile(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/media", bytes.NewReader(nil), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadMedia(t *testing.T) {
	e := newTestEnv(t)

	rec := uploadFile(t, e, "notes.txt", "text/plain", "remember the milk")
	require.Equal(t, http.StatusCreated, rec.Code)
	media := parseResponse[MediaResponse](t, rec)

	rec = e.do(t, http.MethodGet, "/api/media/download/"+media.Name, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remember the milk", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestDownloadMediaUnknownExtensionIsOctetStream(t *testing.T) {
	e := newTestEnv(t)

	rec := uploadFile(t, e, "blob.unknownext", "", "binary")
	require.Equal(t, http.StatusCreated, rec.Code)
	media := parseResponse[MediaResponse](t, rec)

	rec = e.do(t, http.MethodGet, "/api/media/download/"+media.Name, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestDownloadMediaNotFound(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/media/download/missing.bin", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMediaMetadata(t *testing.T) {
	e := newTestEnv(t)

	rec := uploadFile(t, e, "photo.jpg", "image/jpeg", "bytes")
	media := parseResponse[MediaResponse](t, rec)

	rec = e.do(t, http.MethodPut, "/api/media", jsonBody(t, MediaRequest{
		ID:          media.ID,
		Description: "team offsite",
	}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := parseResponse[MediaResponse](t, rec)
	assert.Equal(t, "team offsite", updated.Description)
	assert.Equal(t, media.Name, updated.Name)
	assert.Equal(t, media.FileSize, updated.FileSize)
}

// =============================================================================
// Ambient Tests
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", parseResponse[HealthResponse](t, rec).Status)
}

func TestReadyEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[ReadyResponse](t, rec)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["store"])
}

func TestReadyEndpointStoreDown(t *testing.T) {
	e := newTestEnv(t)
	e.store.err = store.ErrConnectionFailed

	rec := e.do(t, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenAPISpecServed(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var spec map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&spec))
	assert.Equal(t, "3.0.3", spec["openapi"])

	paths, ok := spec["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/categories")
	assert.Contains(t, paths, "/api/_search/degausers")
	assert.Contains(t, paths, "/api/mediabyslug/{slug}")
}

func TestRequestIDHeaderSet(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/health", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
