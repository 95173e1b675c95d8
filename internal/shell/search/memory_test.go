package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_SearchMatchesNameSlugDescription(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_1", ClientID: "main", Name: "Tech & Science", Slug: "TechScience", Description: "gadgets"}))
	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_2", ClientID: "main", Name: "Politics", Slug: "Politics", Description: "elections and policy"}))

	ids, total, err := idx.Search(ctx, domain.KindCategory, "main", "tech", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"cat_1"}, ids)

	ids, total, err = idx.Search(ctx, domain.KindCategory, "main", "policy", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"cat_2"}, ids)

	ids, total, err = idx.Search(ctx, domain.KindCategory, "main", "TechScience", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"cat_1"}, ids)
}

func TestMemoryIndex_EmptyQueryReturnsAll(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_1", ClientID: "main", Name: "A"}))
	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_2", ClientID: "main", Name: "B"}))

	ids, total, err := idx.Search(ctx, domain.KindCategory, "main", "", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"cat_1", "cat_2"}, ids)
}

func TestMemoryIndex_ScopedByKindAndTenant(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_1", ClientID: "main", Name: "Tech"}))
	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindMedia, ID: "med_1", ClientID: "main", Name: "Tech"}))
	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_2", ClientID: "other", Name: "Tech"}))

	ids, total, err := idx.Search(ctx, domain.KindCategory, "main", "tech", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"cat_1"}, ids)
}

func TestMemoryIndex_UpsertReplaces(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_1", ClientID: "main", Name: "Old"}))
	require.NoError(t, idx.Upsert(ctx, Document{Kind: domain.KindCategory, ID: "cat_1", ClientID: "main", Name: "New"}))

	_, total, err := idx.Search(ctx, domain.KindCategory, "main", "old", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	ids, total, err := idx.Search(ctx, domain.KindCategory, "main", "new", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"cat_1"}, ids)
}

func TestMemoryIndex_DeleteUnknownIsNoop(t *testing.T) {
	idx := NewMemoryIndex()
	assert.NoError(t, idx.Delete(context.Background(), domain.KindCategory, "cat_missing"))
}

func TestMemoryIndex_Pagination(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Upsert(ctx, Document{
			Kind:     domain.KindCategory,
			ID:       fmt.Sprintf("cat_%d", i),
			ClientID: "main",
			Name:     fmt.Sprintf("Topic %d", i),
		}))
	}

	ids, total, err := idx.Search(ctx, domain.KindCategory, "main", "topic", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"cat_0", "cat_1"}, ids)

	ids, total, err = idx.Search(ctx, domain.KindCategory, "main", "topic", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"cat_4"}, ids)

	ids, _, err = idx.Search(ctx, domain.KindCategory, "main", "topic", 9, 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
