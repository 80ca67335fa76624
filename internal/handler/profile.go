package handler

import (
	"net/http"

	"flicks/internal/middleware"
	"flicks/internal/profile"
	"flicks/internal/session"
	"flicks/internal/subscription"
	"flicks/pkg/errors"
	"flicks/pkg/logger"
	"flicks/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ProfileHandler handles profile CRUD and profile selection (the device
// admission point).
type ProfileHandler struct {
	profiles      *profile.Service
	sessions      *session.Service
	subscriptions *subscription.Service
	validator     *validator.Validator
	logger        logger.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *profile.Service, sessions *session.Service, subscriptions *subscription.Service, val *validator.Validator, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles:      profiles,
		sessions:      sessions,
		subscriptions: subscriptions,
		validator:     val,
		logger:        log,
	}
}

// List returns the account's profiles.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profiles, err := h.profiles.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Profile list failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

// Create adds a profile under the account limit.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req profile.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.profiles.Create(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case errors.ErrProfileLimitReached:
			respondError(w, http.StatusConflict, "Profile limit reached")
		case errors.ErrProfileNameTaken:
			respondError(w, http.StatusConflict, "Profile name already in use")
		default:
			h.logger.Error("Profile create failed", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusInternalServerError, "Failed to create profile")
		}
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Update edits a profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.authedProfileID(w, r)
	if !ok {
		return
	}

	var req profile.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.profiles.Update(r.Context(), userID, profileID, &req)
	if err != nil {
		h.respondProfileError(w, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a profile.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.authedProfileID(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Delete(r.Context(), userID, profileID); err != nil {
		h.respondProfileError(w, err, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SelectResponse is returned from profile selection.
type SelectResponse struct {
	Profile interface{}          `json:"profile"`
	Admit   *session.AdmitResult `json:"admission"`
}

// Select picks a profile for viewing and runs device admission against the
// account's plan. A blocked admission returns 409 with the active sessions
// so the client can offer "sign out a device".
func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID, profileID, ok := h.authedProfileID(w, r)
	if !ok {
		return
	}

	var req session.FingerprintInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected, err := h.profiles.GetOwned(r.Context(), userID, profileID)
	if err != nil {
		h.respondProfileError(w, err, "Failed to select profile")
		return
	}

	plan, err := h.subscriptions.EffectivePlan(r.Context(), userID)
	if err != nil {
		h.logger.Error("Plan lookup failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to resolve plan")
		return
	}

	fingerprint := session.Fingerprint(req)
	info := session.DeviceInfoFromUserAgent(req.UserAgent)

	result, err := h.sessions.Admit(r.Context(), userID, fingerprint, info, plan.DeviceLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if !result.Allowed {
		status = http.StatusConflict
	}
	respondJSON(w, status, &SelectResponse{Profile: selected, Admit: result})
}

func (h *ProfileHandler) authedProfileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
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

func (h *ProfileHandler) respondProfileError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case errors.ErrProfileNotFound:
		respondError(w, http.StatusNotFound, "Profile not found")
	case errors.ErrProfileNotOwned:
		respondError(w, http.StatusForbidden, "Profile does not belong to account")
	default:
		h.logger.Error(fallback, map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
