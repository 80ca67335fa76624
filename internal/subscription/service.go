// Package subscription exposes plan gating: device limits and permitted
// playback qualities per account.
package subscription

import (
	"context"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
)

// Repository persists plans and account subscriptions.
type Repository interface {
	ListPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error)
	FindPlan(ctx context.Context, tier domain.PlanTier) (*domain.SubscriptionPlan, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
}

// Service resolves the effective plan for an account.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Plans(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx)
}

// Current returns the account's subscription, or nil when it has none.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	return s.repo.FindByUser(ctx, userID)
}

// EffectivePlan is the plan that gates admission and playback right now.
// Accounts without an active subscription fall back to basic gating rather
// than being locked out entirely.
func (s *Service) EffectivePlan(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionPlan, error) {
	sub, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier := domain.PlanBasic
	if sub != nil && sub.Status == domain.SubscriptionActive {
		tier = sub.Tier
	}
	return s.repo.FindPlan(ctx, tier)
}

// ChangePlan switches the account to a new tier, activating it immediately.
func (s *Service) ChangePlan(ctx context.Context, userID uuid.UUID, tier domain.PlanTier) (*domain.Subscription, error) {
	if _, err := s.repo.FindPlan(ctx, tier); err != nil {
		return nil, errors.ErrPlanNotFound
	}

	now := time.Now().UTC()
	renews := now.AddDate(0, 1, 0)

	sub, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &domain.Subscription{
			ID:        uuid.New(),
			UserID:    userID,
			CreatedAt: now,
		}
	}
	sub.Tier = tier
	sub.Status = domain.SubscriptionActive
	sub.RenewsAt = &renews
	sub.UpdatedAt = now

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
