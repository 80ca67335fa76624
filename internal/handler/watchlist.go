package handler

import (
	"net/http"

	"flicks/internal/middleware"
	"flicks/internal/profile"
	"flicks/internal/watchlist"
	"flicks/pkg/errors"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// WatchlistHandler serves the per-profile "My List".
type WatchlistHandler struct {
	service  *watchlist.Service
	profiles *profile.Service
	logger   logger.Logger
}

// NewWatchlistHandler creates a WatchlistHandler.
func NewWatchlistHandler(service *watchlist.Service, profiles *profile.Service, log logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{service: service, profiles: profiles, logger: log}
}

// AddRequest names the content to add.
type AddRequest struct {
	ContentID uuid.UUID `json:"content_id" validate:"required"`
}

// List returns the profile's list, newest first.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Watchlist load failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Add puts a title on the list. Idempotent.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	var req AddRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ContentID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "content_id is required")
		return
	}

	if err := h.service.Add(r.Context(), profileID, req.ContentID); err != nil {
		if err == errors.ErrContentNotFound {
			respondError(w, http.StatusNotFound, "Content not found")
			return
		}
		h.logger.Error("Watchlist add failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to add to watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove takes a title off the list.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	contentID, err := uuid.Parse(mux.Vars(r)["contentID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid content id")
		return
	}

	if err := h.service.Remove(r.Context(), profileID, contentID); err != nil {
		h.logger.Error("Watchlist remove failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to remove from watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) ownedProfile(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}

	profileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid profile id")
		return uuid.Nil, false
	}

	if _, err := h.profiles.GetOwned(r.Context(), userID, profileID); err != nil {
		respondError(w, http.StatusForbidden, "Profile does not belong to account")
		return uuid.Nil, false
	}
	return profileID, true
}
