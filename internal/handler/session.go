package handler

import (
	"net/http"

	"flicks/internal/middleware"
	"flicks/internal/session"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// SessionHandler exposes device-session management for account settings.
type SessionHandler struct {
	service *session.Service
	logger  logger.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(service *session.Service, log logger.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: log}
}

// List returns the account's device sessions, oldest activity first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sessions, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Session list failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// Heartbeat refreshes a session's last activity. Always 204: heartbeats are
// fire-and-forget on both sides.
func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	h.service.Heartbeat(r.Context(), sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// Revoke signs a device out. This is user-initiated, so failure surfaces.
func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sessionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	// Only the account's own sessions can be revoked.
	owned, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Session list failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to revoke session")
		return
	}
	found := false
	for _, s := range owned {
		if s.ID == sessionID {
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	if !h.service.Revoke(r.Context(), sessionID) {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
