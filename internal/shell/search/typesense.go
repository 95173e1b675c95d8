package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

// queryFields are the schema fields queries match against.
const queryFields = "name,slug,description"

// TypesenseIndex implements Index against a Typesense server with one
// collection per entity kind.
type TypesenseIndex struct {
	client *typesense.Client
}

// NewTypesenseIndex connects to Typesense and ensures the per-kind
// collections exist.
func NewTypesenseIndex(ctx context.Context, serverURL, apiKey string) (*TypesenseIndex, error) {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	idx := &TypesenseIndex{client: client}
	if err := idx.ensureCollections(ctx); err != nil {
		return nil, fmt.Errorf("failed to create typesense collections: %w", err)
	}
	return idx, nil
}

func (t *TypesenseIndex) ensureCollections(ctx context.Context) error {
	kinds := []domain.Kind{
		domain.KindCategory,
		domain.KindOrganization,
		domain.KindMedia,
		domain.KindDegaUser,
	}
	for _, kind := range kinds {
		schema := &api.CollectionSchema{
			Name: collectionName(kind),
			Fields: []api.Field{
				{Name: "client_id", Type: "string", Facet: pointer.True()},
				{Name: "name", Type: "string"},
				{Name: "slug", Type: "string"},
				{Name: "description", Type: "string"},
			},
		}
		if _, err := t.client.Collections().Create(ctx, schema); err != nil {
			var httpErr *typesense.HTTPError
			if errors.As(err, &httpErr) && httpErr.Status == http.StatusConflict {
				continue
			}
			return err
		}
	}
	return nil
}

func collectionName(kind domain.Kind) string {
	return "dega_" + string(kind)
}

func (t *TypesenseIndex) Upsert(ctx context.Context, doc Document) error {
	body := map[string]any{
		"id":          doc.ID,
		"client_id":   doc.ClientID,
		"name":        doc.Name,
		"slug":        doc.Slug,
		"description": doc.Description,
	}
	_, err := t.client.Collection(collectionName(doc.Kind)).Documents().Upsert(ctx, body, &api.DocumentIndexParameters{})
	return err
}

func (t *TypesenseIndex) Delete(ctx context.Context, kind domain.Kind, id string) error {
	_, err := t.client.Collection(collectionName(kind)).Document(id).Delete(ctx)
	if err != nil {
		var httpErr *typesense.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (t *TypesenseIndex) Search(ctx context.Context, kind domain.Kind, clientID, query string, page, size int) ([]string, int, error) {
	q := query
	if q == "" {
		q = "*"
	}

	// Typesense pages are 1-based.
	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String(queryFields),
		Page:    pointer.Int(page + 1),
		PerPage: pointer.Int(size),
	}
	if clientID != "" {
		params.FilterBy = pointer.String(fmt.Sprintf("client_id:=%s", clientID))
	}

	result, err := t.client.Collection(collectionName(kind)).Documents().Search(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total := 0
	if result.Found != nil {
		total = *result.Found
	}

	var ids []string
	if result.Hits != nil {
		ids = make([]string, 0, len(*result.Hits))
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			if id, ok := (*hit.Document)["id"].(string); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, total, nil
}

func (t *TypesenseIndex) Ping(ctx context.Context) error {
	ok, err := t.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("typesense server unhealthy")
	}
	return nil
}
