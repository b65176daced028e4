package taxonomy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-tax/internal/common"
)

// Handler exposes the taxonomy listing endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the listing endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tax-sections", h.Sections)
	r.Get("/tax-subsections/{sectionId}", h.Subsections)
	r.Get("/tax-categories/{subSectionId}", h.Categories)
	r.Get("/tax-subcategories/{categoryId}", h.Subcategories)
}

// Sections handles GET /api/tax-sections.
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	nodes, err := h.service.ListSections(r.Context())
	respond(w, nodes, err, "failed to fetch tax sections")
}

// Subsections handles GET /api/tax-subsections/{sectionId}.
func (h *Handler) Subsections(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	nodes, err := h.service.ListSubsections(r.Context(), chi.URLParam(r, "sectionId"))
	respond(w, nodes, err, "failed to fetch tax subsections")
}

// Categories handles GET /api/tax-categories/{subSectionId}.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	nodes, err := h.service.ListCategories(r.Context(), chi.URLParam(r, "subSectionId"))
	respond(w, nodes, err, "failed to fetch tax categories")
}

// Subcategories handles GET /api/tax-subcategories/{categoryId}.
func (h *Handler) Subcategories(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	subs, err := h.service.ListSubcategories(r.Context(), chi.URLParam(r, "categoryId"))
	respond(w, subs, err, "failed to fetch tax subcategories")
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "taxonomy service not configured", nil)
		return false
	}
	return true
}

// respond writes a bare JSON array on success.
func respond[T any](w http.ResponseWriter, items []T, err error, fallback string) {
	if err != nil {
		common.WriteError(w, err, fallback)
		return
	}
	common.JSON(w, http.StatusOK, items)
}
