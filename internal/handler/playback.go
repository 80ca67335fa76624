package handler

import (
	"net/http"

	"flicks/internal/middleware"
	"flicks/internal/playback"
	"flicks/internal/profile"
	"flicks/pkg/errors"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// PlaybackHandler serves the player bootstrap descriptor.
type PlaybackHandler struct {
	service  *playback.Service
	profiles *profile.Service
	logger   logger.Logger
}

// NewPlaybackHandler creates a PlaybackHandler.
func NewPlaybackHandler(service *playback.Service, profiles *profile.Service, log logger.Logger) *PlaybackHandler {
	return &PlaybackHandler{service: service, profiles: profiles, logger: log}
}

// Describe returns manifest URL, allowed qualities, and resume target for a
// title. The watching profile comes from ?profile_id.
func (h *PlaybackHandler) Describe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	contentID, err := uuid.Parse(mux.Vars(r)["contentID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid content id")
		return
	}

	profileID, err := uuid.Parse(r.URL.Query().Get("profile_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "profile_id is required")
		return
	}
	if _, err := h.profiles.GetOwned(r.Context(), userID, profileID); err != nil {
		respondError(w, http.StatusForbidden, "Profile does not belong to account")
		return
	}

	desc, err := h.service.Describe(r.Context(), userID, profileID, contentID)
	if err != nil {
		if err == errors.ErrContentNotFound {
			respondError(w, http.StatusNotFound, "Content not found")
			return
		}
		h.logger.Error("Playback describe failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to resolve playback")
		return
	}

	respondJSON(w, http.StatusOK, desc)
}
