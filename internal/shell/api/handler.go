// Package api provides HTTP handlers for the Dega content API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/degacms/dega/internal/core/domain"
	"github.com/degacms/dega/internal/core/tenant"
	"github.com/degacms/dega/internal/shell/api/openapi"
	"github.com/degacms/dega/internal/shell/files"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/degacms/dega/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Alert headers accompanying mutating responses.
const (
	headerAlert       = "X-Dega-Alert"
	headerAlertParams = "X-Dega-Params"
)

// DefaultMaxUploadBytes caps media uploads at 50 MiB unless configured.
const DefaultMaxUploadBytes = 50 << 20

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store           store.Store
	index           search.Index
	files           files.Storage
	logger          *slog.Logger
	publicURL       string
	defaultClientID string
	maxUploadBytes  int64

	specOnce sync.Once
	spec     *openapi.Generator
}

// Config carries the handler collaborators and settings.
type Config struct {
	Store           store.Store
	Index           search.Index
	Files           files.Storage
	Logger          *slog.Logger
	PublicURL       string
	DefaultClientID string
	MaxUploadBytes  int64
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Index == nil {
		cfg.Index = search.NewMemoryIndex()
	}
	if cfg.DefaultClientID == "" {
		cfg.DefaultClientID = "main"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		store:           cfg.Store,
		index:           cfg.Index,
		files:           cfg.Files,
		logger:          cfg.Logger,
		publicURL:       cfg.PublicURL,
		defaultClientID: cfg.DefaultClientID,
		maxUploadBytes:  cfg.MaxUploadBytes,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)
	r.Use(h.tenantContext)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", h.handleOpenAPI)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.handleCreateCategory)
			r.Put("/", h.handleUpdateCategory)
			r.Get("/", h.handleListCategories)
			r.Get("/{id}", h.handleGetCategory)
			r.Delete("/{id}", h.handleDeleteCategory)
		})
		r.Get("/categorybyslug/{slug}", h.handleGetCategoryBySlug)

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", h.handleCreateOrganization)
			r.Put("/", h.handleUpdateOrganization)
			r.Get("/", h.handleListOrganizations)
			r.Get("/{id}", h.handleGetOrganization)
			r.Delete("/{id}", h.handleDeleteOrganization)
		})
		r.Get("/organizationbyslug/{slug}", h.handleGetOrganizationBySlug)

		r.Route("/media", func(r chi.Router) {
			r.Post("/", h.handleUploadMedia)
			r.Put("/", h.handleUpdateMedia)
			r.Get("/", h.handleListMedia)
			r.Get("/download/{fileName}", h.handleDownloadMedia)
			r.Get("/{id}", h.handleGetMedia)
			r.Delete("/{id}", h.handleDeleteMedia)
		})
		r.Get("/mediabyslug/{slug}", h.handleGetMediaBySlug)

		r.Route("/degausers", func(r chi.Router) {
			r.Post("/", h.handleCreateDegaUser)
			r.Put("/", h.handleUpdateDegaUser)
			r.Get("/", h.handleListDegaUsers)
			r.Get("/{id}", h.handleGetDegaUser)
			r.Delete("/{id}", h.handleDeleteDegaUser)
		})
		r.Get("/degauserbyslug/{slug}", h.handleGetDegaUserBySlug)

		r.Route("/_search", func(r chi.Router) {
			r.Get("/categories", h.handleSearchCategories)
			r.Get("/organizations", h.handleSearchOrganizations)
			r.Get("/media", h.handleSearchMedia)
			r.Get("/degausers", h.handleSearchDegaUsers)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// tenantContext extracts the tenant and user headers into the request
// context, falling back to the configured default tenant.
func (h *Handler) tenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := tenant.ExtractFromRequest(r, h.defaultClientID)
		next.ServeHTTP(w, r.WithContext(tenant.WithContext(r.Context(), tc)))
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	if err := h.store.Ping(r.Context()); err != nil {
		checks["store"] = "failed"
		ready = false
	} else {
		checks["store"] = "ok"
	}

	if err := h.index.Ping(r.Context()); err != nil {
		checks["search"] = "failed"
		ready = false
	} else {
		checks["search"] = "ok"
	}

	if h.files != nil {
		if err := h.files.Ping(r.Context()); err != nil {
			checks["files"] = "failed"
			ready = false
		} else {
			checks["files"] = "ok"
		}
	}

	if !ready {
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not_ready", Checks: checks})
		return
	}
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", Checks: checks})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeStoreError maps a store failure onto the response taxonomy.
func (h *Handler) writeStoreError(w http.ResponseWriter, entity string, err error) {
	switch {
	case isNotFound(err):
		h.writeError(w, http.StatusNotFound, entity+" not found", "not_found")
	case errors.Is(err, store.ErrDuplicateSlug), errors.Is(err, store.ErrDuplicateID):
		h.writeError(w, http.StatusConflict, entity+" already exists", "conflict")
	default:
		h.logger.Error("store operation failed", "entity", entity, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}

// setAlert sets the mutation alert headers.
func setAlert(w http.ResponseWriter, entity, action, id string) {
	w.Header().Set(headerAlert, "dega."+entity+"."+action)
	w.Header().Set(headerAlertParams, id)
}

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return errors.Is(err, store.ErrNotFound)
}

// upsertIndex mirrors an entity into the search index. Index failures are
// logged, not surfaced: the store already committed the write.
func (h *Handler) upsertIndex(ctx context.Context, doc search.Document) {
	if err := h.index.Upsert(ctx, doc); err != nil {
		h.logger.Warn("search index upsert failed", "kind", doc.Kind, "id", doc.ID, "error", err)
	}
}

func (h *Handler) removeFromIndex(ctx context.Context, kind domain.Kind, id string) {
	if err := h.index.Delete(ctx, kind, id); err != nil {
		h.logger.Warn("search index delete failed", "kind", kind, "id", id, "error", err)
	}
}

// slugExists builds a UniqueSlug lookup closure over a tenant-scoped
// fetch-by-slug. A not-found miss means the slug is free.
func slugExists(lookup func(ctx context.Context, clientID, slug string) error, clientID string) domain.SlugTaken {
	return func(ctx context.Context, slug string) (bool, error) {
		err := lookup(ctx, clientID, slug)
		if err == nil {
			return true, nil
		}
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
}

// searchEntities runs an index query and resolves the ids against a store
// fetch, dropping ids the store no longer has.
func searchEntities[T any](h *Handler, w http.ResponseWriter, r *http.Request, kind domain.Kind, clientID string, fetch func(ctx context.Context, id string) (*T, error)) ([]T, bool) {
	opts := parsePageOptions(r)
	query := r.URL.Query().Get("query")

	ids, total, err := h.index.Search(r.Context(), kind, clientID, query, opts.Page, opts.Size)
	if err != nil {
		h.logger.Error("search failed", "kind", kind, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed", "internal_error")
		return nil, false
	}

	results := make([]T, 0, len(ids))
	for _, id := range ids {
		entity, err := fetch(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			h.writeStoreError(w, string(kind), err)
			return nil, false
		}
		results = append(results, *entity)
	}

	writePageHeaders(w, r, opts, total)
	return results, true
}
