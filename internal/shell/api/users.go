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
// DegaUser Handlers
// =============================================================================

func (h *Handler) handleCreateDegaUser(w http.ResponseWriter, r *http.Request) {
	var req DegaUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID != "" {
		h.writeError(w, http.StatusBadRequest, "a new user cannot already have an id", "validation_error")
		return
	}

	tc := tenant.FromContext(r.Context())

	user, err := domain.NewDegaUser(tc.ClientID, profileFromRequest(req))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	slug, err := domain.UniqueSlug(r.Context(), domain.MakeSlug(req.DisplayName),
		slugExists(h.degaUserSlugLookup, tc.ClientID))
	if err != nil {
		if errors.Is(err, domain.ErrSlugExhausted) {
			h.writeError(w, http.StatusConflict, "no free slug available", "conflict")
			return
		}
		h.writeStoreError(w, "degauser", err)
		return
	}
	user.Slug = slug
	user.OrganizationDefaultID = req.OrganizationDefaultID

	// Validate requested memberships before persisting anything, so a bad
	// organization id rejects the whole create.
	for _, orgID := range req.OrganizationIDs {
		if _, err := h.store.GetOrganization(r.Context(), orgID); err != nil {
			if isNotFound(err) {
				h.writeError(w, http.StatusBadRequest, "unknown organization: "+orgID, "validation_error")
				return
			}
			h.writeStoreError(w, "degauser", err)
			return
		}
	}

	if err := h.store.CreateDegaUser(r.Context(), user); err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}

	if len(req.OrganizationIDs) > 0 {
		if !h.syncMemberships(w, r, user, req.OrganizationIDs) {
			return
		}
		if err := h.store.UpdateDegaUser(r.Context(), user); err != nil {
			h.writeStoreError(w, "degauser", err)
			return
		}
	}

	h.upsertIndex(r.Context(), degaUserDocument(user))
	h.logger.Info("user created", "user_id", user.ID, "client_id", user.ClientID, "slug", user.Slug)

	w.Header().Set("Location", "/api/degausers/"+user.ID)
	setAlert(w, "degauser", "created", user.ID)
	h.writeJSON(w, http.StatusCreated, degaUserToResponse(user))
}

func (h *Handler) handleUpdateDegaUser(w http.ResponseWriter, r *http.Request) {
	var req DegaUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID == "" {
		h.writeError(w, http.StatusBadRequest, "an existing user must have an id", "validation_error")
		return
	}

	user, err := h.store.GetDegaUser(r.Context(), req.ID)
	if err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}

	if err := user.Replace(profileFromRequest(req)); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	user.OrganizationDefaultID = req.OrganizationDefaultID

	// Null organization_ids keeps current memberships.
	if req.OrganizationIDs != nil {
		if !h.syncMemberships(w, r, user, req.OrganizationIDs) {
			return
		}
	}

	if err := h.store.UpdateDegaUser(r.Context(), user); err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}

	h.upsertIndex(r.Context(), degaUserDocument(user))

	setAlert(w, "degauser", "updated", user.ID)
	h.writeJSON(w, http.StatusOK, degaUserToResponse(user))
}

func (h *Handler) handleListDegaUsers(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	opts := parsePageOptions(r)

	users, total, err := h.store.ListDegaUsers(r.Context(), tc.ClientID, opts)
	if err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}

	responses := make([]DegaUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, degaUserToResponse(&users[i]))
	}

	writePageHeaders(w, r, opts, total)
	h.writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGetDegaUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetDegaUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}
	h.writeJSON(w, http.StatusOK, degaUserToResponse(user))
}

func (h *Handler) handleGetDegaUserBySlug(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())

	user, err := h.store.GetDegaUserBySlug(r.Context(), tc.ClientID, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, "degauser", err)
		return
	}
	h.writeJSON(w, http.StatusOK, degaUserToResponse(user))
}

// Deleting a user prunes it from every organization's member set.
func (h *Handler) handleDeleteDegaUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.store.GetDegaUser(r.Context(), id)
	if err != nil && !isNotFound(err) {
		h.writeStoreError(w, "degauser", err)
		return
	}

	if user != nil {
		// RemoveOrganization shrinks user.OrganizationIDs in place; range a copy.
		for _, orgID := range append([]string(nil), user.OrganizationIDs...) {
			org, err := h.store.GetOrganization(r.Context(), orgID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				h.writeStoreError(w, "degauser", err)
				return
			}
			domain.RemoveOrganization(user, org)
			if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
				h.writeStoreError(w, "degauser", err)
				return
			}
		}

		if err := h.store.DeleteDegaUser(r.Context(), id); err != nil && !isNotFound(err) {
			h.writeStoreError(w, "degauser", err)
			return
		}
	}

	h.removeFromIndex(r.Context(), domain.KindDegaUser, id)

	setAlert(w, "degauser", "deleted", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleSearchDegaUsers(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	users, ok := searchEntities(h, w, r, domain.KindDegaUser, tc.ClientID, h.store.GetDegaUser)
	if !ok {
		return
	}

	responses := make([]DegaUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, degaUserToResponse(&users[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// =============================================================================
// DegaUser Helpers
// =============================================================================

// syncMemberships reconciles the user's organization set against the wanted
// ids, keeping both sides of the membership adjacency in step. Referencing an
// unknown organization is a validation error. Affected organizations are
// persisted here; the caller persists the user. Returns false after writing
// an error response.
func (h *Handler) syncMemberships(w http.ResponseWriter, r *http.Request, user *domain.DegaUser, wanted []string) bool {
	wantedSet := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		wantedSet[id] = true
	}

	for _, orgID := range append([]string(nil), user.OrganizationIDs...) {
		if wantedSet[orgID] {
			continue
		}
		org, err := h.store.GetOrganization(r.Context(), orgID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			h.writeStoreError(w, "degauser", err)
			return false
		}
		domain.RemoveOrganization(user, org)
		if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
			h.writeStoreError(w, "degauser", err)
			return false
		}
	}

	for _, orgID := range wanted {
		if user.HasOrganization(orgID) {
			continue
		}
		org, err := h.store.GetOrganization(r.Context(), orgID)
		if err != nil {
			if isNotFound(err) {
				h.writeError(w, http.StatusBadRequest, "unknown organization: "+orgID, "validation_error")
				return false
			}
			h.writeStoreError(w, "degauser", err)
			return false
		}
		domain.AddOrganization(user, org)
		if err := h.store.UpdateOrganization(r.Context(), org); err != nil {
			h.writeStoreError(w, "degauser", err)
			return false
		}
	}

	return true
}

func (h *Handler) degaUserSlugLookup(ctx context.Context, clientID, slug string) error {
	_, err := h.store.GetDegaUserBySlug(ctx, clientID, slug)
	return err
}

func profileFromRequest(req DegaUserRequest) domain.UserProfile {
	return domain.UserProfile{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DisplayName:    req.DisplayName,
		Email:          req.Email,
		Website:        req.Website,
		FacebookURL:    req.FacebookURL,
		TwitterURL:     req.TwitterURL,
		InstagramURL:   req.InstagramURL,
		LinkedinURL:    req.LinkedinURL,
		GithubURL:      req.GithubURL,
		ProfilePicture: req.ProfilePicture,
		Description:    req.Description,
		IsActive:       req.IsActive,
	}
}

func degaUserDocument(u *domain.DegaUser) search.Document {
	return search.Document{
		Kind:        domain.KindDegaUser,
		ID:          u.ID,
		ClientID:    u.ClientID,
		Name:        u.DisplayName,
		Slug:        u.Slug,
		Description: u.Description,
	}
}

func degaUserToResponse(u *domain.DegaUser) DegaUserResponse {
	resp := DegaUserResponse{
		ID:                    u.ID,
		ClientID:              u.ClientID,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		DisplayName:           u.DisplayName,
		Email:                 u.Email,
		Slug:                  u.Slug,
		Website:               u.Website,
		FacebookURL:           u.FacebookURL,
		TwitterURL:            u.TwitterURL,
		InstagramURL:          u.InstagramURL,
		LinkedinURL:           u.LinkedinURL,
		GithubURL:             u.GithubURL,
		ProfilePicture:        u.ProfilePicture,
		Description:           u.Description,
		IsActive:              u.IsActive,
		OrganizationIDs:       u.OrganizationIDs,
		OrganizationDefaultID: u.OrganizationDefaultID,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
	if resp.OrganizationIDs == nil {
		resp.OrganizationIDs = []string{}
	}
	return resp
}
