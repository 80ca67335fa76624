package handler

import (
	"net/http"
	"strconv"
	"time"

	"flicks/internal/middleware"
	"flicks/internal/profile"
	"flicks/internal/progress"
	"flicks/pkg/logger"
	"flicks/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ProgressHandler records checkpoints and serves the continue-watching feed.
type ProgressHandler struct {
	service   *progress.Service
	profiles  *profile.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(service *progress.Service, profiles *profile.Service, val *validator.Validator, log logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:   service,
		profiles:  profiles,
		validator: val,
		logger:    log,
	}
}

// RecordRequest is one playback checkpoint from the player.
type RecordRequest struct {
	ContentID uuid.UUID `json:"content_id" validate:"required"`
	Position  int       `json:"position" validate:"min=0"`
	Duration  int       `json:"duration" validate:"min=0"`
	Season    int       `json:"season,omitempty" validate:"min=0"`
	Episode   int       `json:"episode,omitempty" validate:"min=0"`
	// RecordedAt is the client event time; zero means now. It decides which
	// of two racing saves wins.
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// Record accepts a checkpoint. Always 204 on accepted input: save failures
// are a server-side log line, never a player interruption.
func (h *ProgressHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.authedProfileID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetOwned(r.Context(), userID, profileID); err != nil {
		respondError(w, http.StatusForbidden, "Profile does not belong to account")
		return
	}

	var req RecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var ep *progress.EpisodeContext
	if req.Season > 0 && req.Episode > 0 {
		ep = &progress.EpisodeContext{Season: req.Season, Episode: req.Episode}
	}

	h.service.Record(r.Context(), profileID, req.ContentID, req.Position, req.Duration, ep, req.RecordedAt)
	w.WriteHeader(http.StatusNoContent)
}

// ContinueWatching returns the profile's feed, newest first.
func (h *ProgressHandler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.authedProfileID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetOwned(r.Context(), userID, profileID); err != nil {
		respondError(w, http.StatusForbidden, "Profile does not belong to account")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	feed, err := h.service.ContinueWatchingFeed(r.Context(), profileID, limit)
	if err != nil {
		h.logger.Error("Continue watching feed failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load feed")
		return
	}

	respondJSON(w, http.StatusOK, feed)
}

func (h *ProgressHandler) authedProfileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	profileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid profile id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, profileID, true
}
