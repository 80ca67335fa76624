package postgres

import (
	"context"
	"database/sql"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	var plans []*domain.SubscriptionPlan
	err := r.db.SelectContext(ctx, &plans, `
		SELECT tier, name, device_limit, max_quality, monthly_price
		FROM subscription_plans
		ORDER BY monthly_price ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list plans")
	}
	return plans, nil
}

func (r *SubscriptionRepository) FindPlan(ctx context.Context, tier domain.PlanTier) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.db.GetContext(ctx, &plan, `
		SELECT tier, name, device_limit, max_quality, monthly_price
		FROM subscription_plans WHERE tier = $1
	`, tier)
	if err == sql.ErrNoRows {
		return nil, errors.ErrPlanNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find plan")
	}
	return &plan, nil
}

func (r *SubscriptionRepository) UpsertPlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscription_plans (tier, name, device_limit, max_quality, monthly_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tier) DO UPDATE SET
			name = EXCLUDED.name,
			device_limit = EXCLUDED.device_limit,
			max_quality = EXCLUDED.max_quality,
			monthly_price = EXCLUDED.monthly_price
	`, plan.Tier, plan.Name, plan.DeviceLimit, plan.MaxQuality, plan.MonthlyPrice)
	return err
}

// FindByUser returns the account's subscription, or nil when it never had
// one; callers fall back to basic gating.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT id, user_id, tier, status, renews_at, created_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find subscription")
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, tier, status, renews_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			renews_at = EXCLUDED.renews_at,
			updated_at = EXCLUDED.updated_at
	`, sub.ID, sub.UserID, sub.Tier, sub.Status, sub.RenewsAt, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to upsert subscription")
	}
	return nil
}
