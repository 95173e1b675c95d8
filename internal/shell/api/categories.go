package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/degacms/dega/internal/core/tenant"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Category Handlers
// =============================================================================

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID != "" {
		h.writeError(w, http.StatusBadRequest, "a new category cannot already have an id", "validation_error")
		return
	}

	tc := tenant.FromContext(r.Context())

	category, err := domain.NewCategory(tc.ClientID, req.Name, req.Description)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	slug, err := domain.UniqueSlug(r.Context(), domain.MakeSlug(req.Name),
		slugExists(h.categorySlugLookup, tc.ClientID))
	if err != nil {
		if errors.Is(err, domain.ErrSlugExhausted) {
			h.writeError(w, http.StatusConflict, "no free slug available", "conflict")
			return
		}
		h.writeStoreError(w, "category", err)
		return
	}
	category.Slug = slug

	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, "category", err)
		return
	}

	h.upsertIndex(r.Context(), categoryDocument(category))
	h.logger.Info("category created", "category_id", category.ID, "client_id", category.ClientID, "slug", category.Slug)

	w.Header().Set("Location", "/api/categories/"+category.ID)
	setAlert(w, "category", "created", category.ID)
	h.writeJSON(w, http.StatusCreated, categoryToResponse(category))
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID == "" {
		h.writeError(w, http.StatusBadRequest, "an existing category must have an id", "validation_error")
		return
	}

	category, err := h.store.GetCategory(r.Context(), req.ID)
	if err != nil {
		h.writeStoreError(w, "category", err)
		return
	}

	if err := category.Replace(req.Name, req.Description); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	if err := h.store.UpdateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, "category", err)
		return
	}

	h.upsertIndex(r.Context(), categoryDocument(category))

	setAlert(w, "category", "updated", category.ID)
	h.writeJSON(w, http.StatusOK, categoryToResponse(category))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	opts := parsePageOptions(r)

	categories, total, err := h.store.ListCategories(r.Context(), tc.ClientID, opts)
	if err != nil {
		h.writeStoreError(w, "category", err)
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, categoryToResponse(&categories[i]))
	}

	writePageHeaders(w, r, opts, total)
	h.writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, categoryToResponse(category))
}

func (h *Handler) handleGetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())

	category, err := h.store.GetCategoryBySlug(r.Context(), tc.ClientID, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, "category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, categoryToResponse(category))
}

// Delete is idempotent: removing an unknown category still succeeds.
func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteCategory(r.Context(), id); err != nil && !isNotFound(err) {
		h.writeStoreError(w, "category", err)
		return
	}

	h.removeFromIndex(r.Context(), domain.KindCategory, id)

	setAlert(w, "category", "deleted", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	categories, ok := searchEntities(h, w, r, domain.KindCategory, tc.ClientID, h.store.GetCategory)
	if !ok {
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, categoryToResponse(&categories[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// =============================================================================
// Category Helpers
// =============================================================================

func (h *Handler) categorySlugLookup(ctx context.Context, clientID, slug string) error {
	_, err := h.store.GetCategoryBySlug(ctx, clientID, slug)
	return err
}

func categoryDocument(c *domain.Category) search.Document {
	return search.Document{
		Kind:        domain.KindCategory,
		ID:          c.ID,
		ClientID:    c.ClientID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}

func categoryToResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		ClientID:    c.ClientID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
