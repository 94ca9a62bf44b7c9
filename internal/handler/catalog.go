package handler

import (
	"log/slog"
	"net/http"

	"github.com/suyanik/Einkauflist/internal/model"
	"github.com/suyanik/Einkauflist/internal/store"
)

type CatalogHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *store.CatalogStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "Kategoriler getirilemedi")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeSuccess(w, map[string]any{"data": categories})
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategoriesWithProducts()
	if err != nil {
		h.logger.Error("list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Ürünler alınamadı")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeSuccess(w, map[string]any{"data": categories})
}
