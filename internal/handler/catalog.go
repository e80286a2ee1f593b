package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/middleware"
	"go.uber.org/zap"
)

// CatalogStore lists the read-only reference collections.
type CatalogStore interface {
	ListEmployees(ctx context.Context, brand string) ([]database.Employee, error)
	ListCampaigns(ctx context.Context, brand string, activeOnly bool) ([]database.Campaign, error)
	ListStyles(ctx context.Context, brand string) ([]database.Style, error)
}

type CatalogHandler struct {
	store CatalogStore
	log   *zap.Logger
}

func NewCatalogHandler(store CatalogStore, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, log: log}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.Employees)
	r.Get("/campaigns", h.Campaigns)
	r.Get("/styles", h.Styles)
}

func (h *CatalogHandler) Employees(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListEmployees(r.Context(), middleware.BrandFromContext(r.Context()))
	if err != nil {
		writeError(w, h.log, "list employees", err)
		return
	}
	writeList(w, items, int64(len(items)))
}

// Campaigns handles GET /campaigns?active=true.
func (h *CatalogHandler) Campaigns(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active") == "true"
	items, err := h.store.ListCampaigns(r.Context(), middleware.BrandFromContext(r.Context()), active)
	if err != nil {
		writeError(w, h.log, "list campaigns", err)
		return
	}
	writeList(w, items, int64(len(items)))
}

func (h *CatalogHandler) Styles(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListStyles(r.Context(), middleware.BrandFromContext(r.Context()))
	if err != nil {
		writeError(w, h.log, "list styles", err)
		return
	}
	writeList(w, items, int64(len(items)))
}
