package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Organization Handlers
// =============================================================================

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req OrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID != "" {
		h.writeError(w, http.StatusBadRequest, "a new organization cannot already have an id", "validation_error")
		return
	}

	org, err := domain.NewOrganization(req.Name, req.Description, req.SiteTitle, req.TagLine, req.Email, req.Phone)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	// An organization's slug doubles as its tenant id, so uniqueness is
	// probed in the namespace the slug itself would create.
	slug, err := domain.UniqueSlug(r.Context(), domain.MakeSlug(req.Name), h.organizationSlugTaken)
	if err != nil {
		if errors.Is(err, domain.ErrSlugExhausted) {
			h.writeError(w, http.StatusConflict, "no free slug available", "conflict")
			return
		}
		h.writeStoreError(w, "organization", err)
		return
	}
	org.Slug = slug
	org.ClientID = slug

	if err := h.store.CreateOrganization(r.Context(), org); err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}

	h.upsertIndex(r.Context(), organizationDocument(org))
	h.logger.Info("organization created", "organization_id", org.ID, "client_id", org.ClientID)

	w.Header().Set("Location", "/api/organizations/"+org.ID)
	setAlert(w, "organization", "created", org.ID)
	h.writeJSON(w, http.StatusCreated, organizationToResponse(org))
}

func (h *Handler) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req OrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID == "" {
		h.writeError(w, http.StatusBadRequest, "an existing organization must have an id", "validation_error")
		return
	}

	org, err := h.store.GetOrganization(r.Context(), req.ID)
	if err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}

	if err := org.Replace(req.Name, req.Description, req.SiteTitle, req.TagLine, req.Email, req.Phone); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}

	h.upsertIndex(r.Context(), organizationDocument(org))

	setAlert(w, "organization", "updated", org.ID)
	h.writeJSON(w, http.StatusOK, organizationToResponse(org))
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	opts := parsePageOptions(r)

	// Organizations are their own tenants; listing is not scoped to the
	// caller's client id the way the other entities are.
	organizations, total, err := h.store.ListOrganizations(r.Context(), "", opts)
	if err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}

	responses := make([]OrganizationResponse, 0, len(organizations))
	for i := range organizations {
		responses = append(responses, organizationToResponse(&organizations[i]))
	}

	writePageHeaders(w, r, opts, total)
	h.writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.store.GetOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}
	h.writeJSON(w, http.StatusOK, organizationToResponse(org))
}

func (h *Handler) handleGetOrganizationBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	org, err := h.store.GetOrganizationBySlug(r.Context(), slug, slug)
	if err != nil {
		h.writeStoreError(w, "organization", err)
		return
	}
	h.writeJSON(w, http.StatusOK, organizationToResponse(org))
}

// Deleting an organization prunes it from every member's organization set so
// the membership adjacency stays consistent.
func (h *Handler) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	org, err := h.store.GetOrganization(r.Context(), id)
	if err != nil && !isNotFound(err) {
		h.writeStoreError(w, "organization", err)
		return
	}

	if org != nil {
		// RemoveOrganization shrinks org.MemberIDs in place; range a copy.
		for _, memberID := range append([]string(nil), org.MemberIDs...) {
			user, err := h.store.GetDegaUser(r.Context(), memberID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				h.writeStoreError(w, "organization", err)
				return
			}
			domain.RemoveOrganization(user, org)
			if err := h.store.UpdateDegaUser(r.Context(), user); err != nil {
				h.writeStoreError(w, "organization", err)
				return
			}
		}

		if err := h.store.DeleteOrganization(r.Context(), id); err != nil && !isNotFound(err) {
			h.writeStoreError(w, "organization", err)
			return
		}
	}

	h.removeFromIndex(r.Context(), domain.KindOrganization, id)

	setAlert(w, "organization", "deleted", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleSearchOrganizations(w http.ResponseWriter, r *http.Request) {
	// Unscoped like the listing: tenancy derives from organizations.
	organizations, ok := searchEntities(h, w, r, domain.KindOrganization, "", h.store.GetOrganization)
	if !ok {
		return
	}

	responses := make([]OrganizationResponse, 0, len(organizations))
	for i := range organizations {
		responses = append(responses, organizationToResponse(&organizations[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// =============================================================================
// Organization Helpers
// =============================================================================

func (h *Handler) organizationSlugTaken(ctx context.Context, slug string) (bool, error) {
	_, err := h.store.GetOrganizationBySlug(ctx, slug, slug)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func organizationDocument(o *domain.Organization) search.Document {
	return search.Document{
		Kind:        domain.KindOrganization,
		ID:          o.ID,
		ClientID:    o.ClientID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
	}
}

func organizationToResponse(o *domain.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		SiteTitle:   o.SiteTitle,
		TagLine:     o.TagLine,
		Email:       o.Email,
		Phone:       o.Phone,
		MemberIDs:   o.MemberIDs,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if resp.MemberIDs == nil {
		resp.MemberIDs = []string{}
	}
	return resp
}
