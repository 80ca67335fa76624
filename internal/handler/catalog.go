package handler

import (
	"net/http"
	"strconv"

	"flicks/internal/catalog"
	"flicks/pkg/errors"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CatalogHandler serves content browsing.
type CatalogHandler struct {
	service *catalog.Service
	logger  logger.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(service *catalog.Service, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: log}
}

// Trending lists titles by popularity. ?kids=true restricts to kids-safe.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	kidsOnly := r.URL.Query().Get("kids") == "true"

	items, err := h.service.Trending(r.Context(), limit, kidsOnly)
	if err != nil {
		h.logger.Error("Trending query failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load trending")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Detail returns a title with its external metadata.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid content id")
		return
	}

	detail, err := h.service.Detail(r.Context(), id)
	if err != nil {
		if err == errors.ErrContentNotFound {
			respondError(w, http.StatusNotFound, "Content not found")
			return
		}
		h.logger.Error("Content detail failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load content")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Structure returns a series' season/episode layout.
func (h *CatalogHandler) Structure(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid content id")
		return
	}

	structure, err := h.service.Structure(r.Context(), id)
	if err != nil {
		h.logger.Error("Series structure failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load structure")
		return
	}

	respondJSON(w, http.StatusOK, structure)
}
