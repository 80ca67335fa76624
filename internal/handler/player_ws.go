package handler

import (
	"net/http"
	"time"

	"flicks/internal/middleware"
	"flicks/internal/profile"
	"flicks/internal/progress"
	"flicks/internal/session"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (CORS)
	},
}

// playerFrame is a message the player sends while a title is playing.
// Progress ticks carry a checkpoint; heartbeats only refresh the session.
type playerFrame struct {
	Type       string    `json:"type"`
	ContentID  uuid.UUID `json:"content_id,omitempty"`
	Position   int       `json:"position,omitempty"`
	Duration   int       `json:"duration,omitempty"`
	Season     int       `json:"season,omitempty"`
	Episode    int       `json:"episode,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
	SessionID  uuid.UUID `json:"session_id,omitempty"`
}

// PlayerSocketHandler keeps a live connection with the player for
// progress ticks and device-session heartbeats.
type PlayerSocketHandler struct {
	progress *progress.Service
	sessions *session.Service
	profiles *profile.Service
	logger   logger.Logger
}

// NewPlayerSocketHandler creates a PlayerSocketHandler.
func NewPlayerSocketHandler(prog *progress.Service, sess *session.Service, profiles *profile.Service, log logger.Logger) *PlayerSocketHandler {
	return &PlayerSocketHandler{
		progress: prog,
		sessions: sess,
		profiles: profiles,
		logger:   log,
	}
}

// Serve upgrades the connection and consumes player frames until the
// client disconnects. Malformed frames close the connection; a dropped
// tick is never fatal to playback.
func (h *PlayerSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	h.logger.Info("Player connected", map[string]interface{}{
		"user_id":    userID.String(),
		"profile_id": profileID.String(),
	})

	for {
		var frame playerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Player connection error", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		switch frame.Type {
		case "progress":
			recordedAt := frame.RecordedAt
			if recordedAt.IsZero() {
				recordedAt = time.Now().UTC()
			}
			var ep *progress.EpisodeContext
			if frame.Season > 0 && frame.Episode > 0 {
				ep = &progress.EpisodeContext{Season: frame.Season, Episode: frame.Episode}
			}
			h.progress.Record(r.Context(), profileID, frame.ContentID, frame.Position, frame.Duration, ep, recordedAt)
		case "heartbeat":
			h.sessions.Heartbeat(r.Context(), frame.SessionID)
		default:
			h.logger.Warn("Unknown player frame", map[string]interface{}{"type": frame.Type})
			return
		}
	}
}
