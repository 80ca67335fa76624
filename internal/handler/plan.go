package handler

import (
	"net/http"

	"flicks/internal/domain"
	"flicks/internal/middleware"
	"flicks/internal/subscription"
	"flicks/pkg/errors"
	"flicks/pkg/logger"
	"flicks/pkg/validator"
)

// PlanHandler serves plans and the account subscription.
type PlanHandler struct {
	service   *subscription.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewPlanHandler creates a PlanHandler.
func NewPlanHandler(service *subscription.Service, val *validator.Validator, log logger.Logger) *PlanHandler {
	return &PlanHandler{service: service, validator: val, logger: log}
}

// Plans lists available subscription plans.
func (h *PlanHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.Plans(r.Context())
	if err != nil {
		h.logger.Error("Plan list failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list plans")
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// Subscription returns the account's subscription and effective plan.
func (h *PlanHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sub, err := h.service.Current(r.Context(), userID)
	if err != nil {
		h.logger.Error("Subscription lookup failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}

	plan, err := h.service.EffectivePlan(r.Context(), userID)
	if err != nil {
		h.logger.Error("Plan lookup failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to resolve plan")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscription":   sub,
		"effective_plan": plan,
	})
}

// ChangePlanRequest names the target tier.
type ChangePlanRequest struct {
	Tier string `json:"tier" validate:"required,plan_tier"`
}

// ChangePlan switches the account's tier.
func (h *PlanHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ChangePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.service.ChangePlan(r.Context(), userID, domain.PlanTier(req.Tier))
	if err != nil {
		if err == errors.ErrPlanNotFound {
			respondError(w, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.Error("Plan change failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to change plan")
		return
	}

	respondJSON(w, http.StatusOK, sub)
}
