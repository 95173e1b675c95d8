package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/degacms/dega/internal/core/tenant"
	"github.com/degacms/dega/internal/shell/files"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Media Handlers
// =============================================================================

// handleUploadMedia accepts a multipart upload under the "file" field,
// stores the bytes, and creates the media record. The slug derives from the
// stored filename, not the client-supplied one.
func (h *Handler) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.writeError(w, http.StatusInternalServerError, "file storage not configured", "internal_error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "multipart field 'file' is required", "validation_error")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stored, err := h.files.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("file save failed", "filename", header.Filename, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to store file", "internal_error")
		return
	}

	tc := tenant.FromContext(r.Context())

	media, err := domain.NewMedia(tc.ClientID, stored.Name, contentType,
		h.publicURL+"/api/media/download/"+stored.Name, tc.UserID, stored.Size)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	slug, err := domain.UniqueSlug(r.Context(), domain.MakeSlug(stored.Name),
		slugExists(h.mediaSlugLookup, tc.ClientID))
	if err != nil {
		if errors.Is(err, domain.ErrSlugExhausted) {
			h.writeError(w, http.StatusConflict, "no free slug available", "conflict")
			return
		}
		h.writeStoreError(w, "media", err)
		return
	}
	media.Slug = slug

	if err := h.store.CreateMedia(r.Context(), media); err != nil {
		h.writeStoreError(w, "media", err)
		return
	}

	h.upsertIndex(r.Context(), mediaDocument(media))
	h.logger.Info("media uploaded", "media_id", media.ID, "client_id", media.ClientID, "name", media.Name, "size", media.FileSize)

	w.Header().Set("Location", "/api/media/"+media.ID)
	setAlert(w, "media", "created", media.ID)
	h.writeJSON(w, http.StatusCreated, mediaToResponse(media))
}

func (h *Handler) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req MediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if req.ID == "" {
		h.writeError(w, http.StatusBadRequest, "an existing media must have an id", "validation_error")
		return
	}

	media, err := h.store.GetMedia(r.Context(), req.ID)
	if err != nil {
		h.writeStoreError(w, "media", err)
		return
	}

	publishedAt := media.PublishedAt
	if req.PublishedAt != nil {
		publishedAt = *req.PublishedAt
	}
	media.Replace(req.Description, publishedAt)

	if err := h.store.UpdateMedia(r.Context(), media); err != nil {
		h.writeStoreError(w, "media", err)
		return
	}

	h.upsertIndex(r.Context(), mediaDocument(media))

	setAlert(w, "media", "updated", media.ID)
	h.writeJSON(w, http.StatusOK, mediaToResponse(media))
}

func (h *Handler) handleListMedia(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	opts := parsePageOptions(r)

	media, total, err := h.store.ListMedia(r.Context(), tc.ClientID, opts)
	if err != nil {
		h.writeStoreError(w, "media", err)
		return
	}

	responses := make([]MediaResponse, 0, len(media))
	for i := range media {
		responses = append(responses, mediaToResponse(&media[i]))
	}

	writePageHeaders(w, r, opts, total)
	h.writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	media, err := h.store.GetMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "media", err)
		return
	}
	h.writeJSON(w, http.StatusOK, mediaToResponse(media))
}

func (h *Handler) handleGetMediaBySlug(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())

	media, err := h.store.GetMediaBySlug(r.Context(), tc.ClientID, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, "media", err)
		return
	}
	h.writeJSON(w, http.StatusOK, mediaToResponse(media))
}

func (h *Handler) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteMedia(r.Context(), id); err != nil && !isNotFound(err) {
		h.writeStoreError(w, "media", err)
		return
	}

	h.removeFromIndex(r.Context(), domain.KindMedia, id)

	setAlert(w, "media", "deleted", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleDownloadMedia streams stored bytes back. Content type comes from the
// storage backend, defaulting to application/octet-stream.
func (h *Handler) handleDownloadMedia(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		h.writeError(w, http.StatusInternalServerError, "file storage not configured", "internal_error")
		return
	}

	fileName := chi.URLParam(r, "fileName")

	reader, contentType, err := h.files.Open(r.Context(), fileName)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "file not found", "not_found")
			return
		}
		h.logger.Error("file open failed", "filename", fileName, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to open file", "internal_error")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("file stream interrupted", "filename", fileName, "error", err)
	}
}

func (h *Handler) handleSearchMedia(w http.ResponseWriter, r *http.Request) {
	tc := tenant.FromContext(r.Context())
	media, ok := searchEntities(h, w, r, domain.KindMedia, tc.ClientID, h.store.GetMedia)
	if !ok {
		return
	}

	responses := make([]MediaResponse, 0, len(media))
	for i := range media {
		responses = append(responses, mediaToResponse(&media[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// =============================================================================
// Media Helpers
// =============================================================================

func (h *Handler) mediaSlugLookup(ctx context.Context, clientID, slug string) error {
	_, err := h.store.GetMediaBySlug(ctx, clientID, slug)
	return err
}

func mediaDocument(m *domain.Media) search.Document {
	return search.Document{
		Kind:        domain.KindMedia,
		ID:          m.ID,
		ClientID:    m.ClientID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
	}
}

func mediaToResponse(m *domain.Media) MediaResponse {
	return MediaResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		Name:        m.Name,
		Slug:        m.Slug,
		Type:        m.Type,
		URL:         m.URL,
		FileSize:    m.FileSize,
		Description: m.Description,
		UploadedBy:  m.UploadedBy,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
