package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func newTestCategory(t *testing.T, clientID, name, slug string) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(clientID, name, "")
	require.NoError(t, err)
	c.Slug = slug
	return c
}

func TestSQLiteStore_CategoryCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c, err := domain.NewCategory("main", "Tech & Science", "all things tech")
	require.NoError(t, err)
	c.Slug = "TechScience"
	require.NoError(t, s.CreateCategory(ctx, c))

	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech & Science", got.Name)
	assert.Equal(t, "TechScience", got.Slug)
	assert.Equal(t, "main", got.ClientID)
	assert.Equal(t, c.CreatedAt, got.CreatedAt)

	require.NoError(t, got.Replace("Science", "narrower scope"))
	require.NoError(t, s.UpdateCategory(ctx, got))

	updated, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science", updated.Name)
	assert.Equal(t, "narrower scope", updated.Description)

	require.NoError(t, s.DeleteCategory(ctx, c.ID))

	_, err = s.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_GetCategoryNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCategory(context.Background(), "cat_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DeleteCategoryNotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.DeleteCategory(context.Background(), "cat_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpdateCategoryNotFound(t *testing.T) {
	s := setupTestStore(t)

	c := newTestCategory(t, "main", "Ghost", "Ghost")
	err := s.UpdateCategory(context.Background(), c)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DuplicateSlugRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := newTestCategory(t, "main", "Tech", "Tech")
	require.NoError(t, s.CreateCategory(ctx, a))

	b := newTestCategory(t, "main", "Tech!", "Tech")
	err := s.CreateCategory(ctx, b)
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestSQLiteStore_SameSlugDifferentTenant(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := newTestCategory(t, "alpha", "Tech", "Tech")
	require.NoError(t, s.CreateCategory(ctx, a))

	b := newTestCategory(t, "beta", "Tech", "Tech")
	assert.NoError(t, s.CreateCategory(ctx, b))
}

func TestSQLiteStore_GetCategoryBySlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory(t, "main", "Tech", "Tech")
	require.NoError(t, s.CreateCategory(ctx, c))

	got, err := s.GetCategoryBySlug(ctx, "main", "Tech")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = s.GetCategoryBySlug(ctx, "other", "Tech")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListCategoriesPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := newTestCategory(t, "main", fmt.Sprintf("Cat %d", i), fmt.Sprintf("Cat%d", i))
		require.NoError(t, s.CreateCategory(ctx, c))
	}
	other := newTestCategory(t, "other", "Elsewhere", "Elsewhere")
	require.NoError(t, s.CreateCategory(ctx, other))

	list, total, err := s.ListCategories(ctx, "main", PageOptions{Page: 0, Size: 2, Sort: "name,asc"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Cat 0", list[0].Name)
	assert.Equal(t, "Cat 1", list[1].Name)

	list, total, err = s.ListCategories(ctx, "main", PageOptions{Page: 2, Size: 2, Sort: "name,asc"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Cat 4", list[0].Name)
}

func TestSQLiteStore_ListCategoriesUnknownSortFallsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory(t, "main", "Solo", "Solo")
	require.NoError(t, s.CreateCategory(ctx, c))

	list, total, err := s.ListCategories(ctx, "main", PageOptions{Sort: "evil; DROP TABLE categories"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestSQLiteStore_OrganizationRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	o, err := domain.NewOrganization("Factly", "data journalism", "Factly Media", "facts matter", "hello@factly.in", "040-1234")
	require.NoError(t, err)
	o.Slug = "Factly"
	o.ClientID = "Factly"
	o.MemberIDs = []string{"usr_1", "usr_2"}
	require.NoError(t, s.CreateOrganization(ctx, o))

	got, err := s.GetOrganization(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Factly Media", got.SiteTitle)
	assert.Equal(t, "facts matter", got.TagLine)
	assert.Equal(t, []string{"usr_1", "usr_2"}, got.MemberIDs)

	got.MemberIDs = []string{"usr_1"}
	require.NoError(t, s.UpdateOrganization(ctx, got))

	updated, err := s.GetOrganization(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"usr_1"}, updated.MemberIDs)

	bySlug, err := s.GetOrganizationBySlug(ctx, "Factly", "Factly")
	require.NoError(t, err)
	assert.Equal(t, o.ID, bySlug.ID)
}

func TestSQLiteStore_OrganizationEmptyMembers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	o, err := domain.NewOrganization("Solo Org", "", "", "", "", "")
	require.NoError(t, err)
	o.Slug = "SoloOrg"
	o.ClientID = "SoloOrg"
	require.NoError(t, s.CreateOrganization(ctx, o))

	got, err := s.GetOrganization(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MemberIDs)
}

func TestSQLiteStore_MediaRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m, err := domain.NewMedia("main", "photo.jpg", "image/jpeg", "http://localhost/files/photo.jpg", "usr_1", 2048)
	require.NoError(t, err)
	m.Slug = "photojpg"
	require.NoError(t, s.CreateMedia(ctx, m))

	got, err := s.GetMedia(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", got.Type)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.Equal(t, "usr_1", got.UploadedBy)

	bySlug, err := s.GetMediaBySlug(ctx, "main", "photojpg")
	require.NoError(t, err)
	assert.Equal(t, m.ID, bySlug.ID)

	got.Replace("team photo", got.PublishedAt)
	require.NoError(t, s.UpdateMedia(ctx, got))

	updated, err := s.GetMedia(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "team photo", updated.Description)

	require.NoError(t, s.DeleteMedia(ctx, m.ID))
	_, err = s.GetMedia(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DegaUserRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u, err := domain.NewDegaUser("main", domain.UserProfile{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		Website:     "https://ada.example.com",
		IsActive:    true,
	})
	require.NoError(t, err)
	u.Slug = "AdaLovelace"
	u.OrganizationIDs = []string{"org_1"}
	u.OrganizationDefaultID = "org_1"
	require.NoError(t, s.CreateDegaUser(ctx, u))

	got, err := s.GetDegaUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.DisplayName)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{"org_1"}, got.OrganizationIDs)
	assert.Equal(t, "org_1", got.OrganizationDefaultID)

	bySlug, err := s.GetDegaUserBySlug(ctx, "main", "AdaLovelace")
	require.NoError(t, err)
	assert.Equal(t, u.ID, bySlug.ID)

	got.OrganizationIDs = []string{"org_1", "org_2"}
	require.NoError(t, s.UpdateDegaUser(ctx, got))

	updated, err := s.GetDegaUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"org_1", "org_2"}, updated.OrganizationIDs)
}

func TestSQLiteStore_ListDegaUsersSortsByDisplayName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		u, err := domain.NewDegaUser("main", domain.UserProfile{
			DisplayName: name,
			Email:       name + "@example.com",
		})
		require.NoError(t, err)
		u.Slug = name
		require.NoError(t, s.CreateDegaUser(ctx, u))
	}

	list, total, err := s.ListDegaUsers(ctx, "main", PageOptions{Sort: "name,asc"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, "Alice", list[0].DisplayName)
	assert.Equal(t, "Bob", list[1].DisplayName)
	assert.Equal(t, "Charlie", list[2].DisplayName)
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
