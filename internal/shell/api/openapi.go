package api

import (
	"net/http"

	"github.com/degacms/dega/internal/shell/api/openapi"
)

// specFor builds the OpenAPI generator with the four content resources.
func (h *Handler) specFor() *openapi.Generator {
	h.specOnce.Do(func() {
		g := openapi.NewGenerator(
			openapi.WithTitle("Dega Content API"),
			openapi.WithVersion("1.0.0"),
			openapi.WithDescription("Multi-tenant content management API: categories, organizations, media, users"),
			openapi.WithServer(h.publicURL),
		)

		g.RegisterResource(openapi.ResourceInfo{
			Name:           "categories",
			Singular:       "category",
			Model:          CategoryResponse{},
			RequestModel:   CategoryRequest{},
			SupportsCreate: true,
			SupportsUpdate: true,
			SupportsSearch: true,
			SupportsBySlug: true,
		})
		g.RegisterResource(openapi.ResourceInfo{
			Name:           "organizations",
			Singular:       "organization",
			Model:          OrganizationResponse{},
			RequestModel:   OrganizationRequest{},
			SupportsCreate: true,
			SupportsUpdate: true,
			SupportsSearch: true,
			SupportsBySlug: true,
		})
		g.RegisterResource(openapi.ResourceInfo{
			Name:           "media",
			Singular:       "media",
			Model:          MediaResponse{},
			RequestModel:   MediaRequest{},
			SupportsUpdate: true,
			SupportsSearch: true,
			SupportsBySlug: true,
		})
		g.RegisterResource(openapi.ResourceInfo{
			Name:           "degausers",
			Singular:       "degauser",
			Model:          DegaUserResponse{},
			RequestModel:   DegaUserRequest{},
			SupportsCreate: true,
			SupportsUpdate: true,
			SupportsSearch: true,
			SupportsBySlug: true,
		})

		h.spec = g
	})
	return h.spec
}

func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	h.specFor().Handler()(w, r)
}
