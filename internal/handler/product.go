package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/suyanik/Einkauflist/internal/store"
	"github.com/suyanik/Einkauflist/internal/translate"
)

const (
	defaultUnit  = "Adet"
	defaultImage = "https://via.placeholder.com/150"
)

type ProductHandler struct {
	catalog    *store.CatalogStore
	translator *translate.Client
	logger     *slog.Logger
}

func NewProductHandler(catalog *store.CatalogStore, translator *translate.Client, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, translator: translator, logger: logger}
}

type saveProductRequest struct {
	NameTR     string `json:"name_tr"`
	NameDE     string `json:"name_de"`
	NamePA     string `json:"name_pa"`
	CategoryID string `json:"categoryId"`
	Unit       string `json:"unit"`
	Image      string `json:"image"`
}

// Save creates a product. Translations are optional; unit and image fall
// back to placeholders when missing.
func (h *ProductHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}

	req.NameTR = strings.TrimSpace(req.NameTR)
	if req.NameTR == "" || req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}
	if req.Unit == "" {
		req.Unit = defaultUnit
	}
	if req.Image == "" {
		req.Image = defaultImage
	}

	product, err := h.catalog.CreateProduct(req.NameTR, req.NameDE, req.NamePA, req.Unit, req.Image, req.CategoryID)
	if err != nil {
		h.logger.Error("create product", "error", err)
		writeError(w, http.StatusInternalServerError, "Veritabanı hatası")
		return
	}
	writeSuccess(w, map[string]any{"product": product})
}

type translateRequest struct {
	NameTR string `json:"name_tr"`
}

// Translate asks the translation service for German and Punjabi names.
func (h *ProductHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}
	req.NameTR = strings.TrimSpace(req.NameTR)
	if req.NameTR == "" {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}

	tr, err := h.translator.Translate(r.Context(), req.NameTR)
	if err != nil {
		h.logger.Error("translate product name", "name", req.NameTR, "error", err)
		writeError(w, http.StatusInternalServerError, "Çeviri başarısız")
		return
	}
	writeSuccess(w, map[string]any{"translation": tr})
}
