package subscription

import (
	"context"
	"testing"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubscriptionPlan), args.Error(1)
}

func (m *MockRepository) FindPlan(ctx context.Context, tier domain.PlanTier) (*domain.SubscriptionPlan, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionPlan), args.Error(1)
}

func (m *MockRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func basicPlan() *domain.SubscriptionPlan {
	return &domain.SubscriptionPlan{
		Tier:         domain.PlanBasic,
		Name:         "Basic",
		DeviceLimit:  1,
		MaxQuality:   domain.QualitySD,
		MonthlyPrice: decimal.NewFromFloat(7.99),
	}
}

func ultraPlan() *domain.SubscriptionPlan {
	return &domain.SubscriptionPlan{
		Tier:         domain.PlanUltra,
		Name:         "Ultra",
		DeviceLimit:  4,
		MaxQuality:   domain.QualityUHD,
		MonthlyPrice: decimal.NewFromFloat(18.99),
	}
}

// --- EffectivePlan ---

func TestEffectivePlanUsesActiveSubscription(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	userID := uuid.New()
	repo.On("FindByUser", mock.Anything, userID).
		Return(&domain.Subscription{UserID: userID, Tier: domain.PlanUltra, Status: domain.SubscriptionActive}, nil)
	repo.On("FindPlan", mock.Anything, domain.PlanUltra).Return(ultraPlan(), nil)

	plan, err := svc.EffectivePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.DeviceLimit)
	assert.Equal(t, domain.QualityUHD, plan.MaxQuality)
}

func TestEffectivePlanFallsBackToBasicWithoutSubscription(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	userID := uuid.New()
	repo.On("FindByUser", mock.Anything, userID).Return(nil, nil)
	repo.On("FindPlan", mock.Anything, domain.PlanBasic).Return(basicPlan(), nil)

	plan, err := svc.EffectivePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanBasic, plan.Tier)
	assert.Equal(t, 1, plan.DeviceLimit)
}

func TestEffectivePlanFallsBackToBasicWhenExpired(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	userID := uuid.New()
	repo.On("FindByUser", mock.Anything, userID).
		Return(&domain.Subscription{UserID: userID, Tier: domain.PlanUltra, Status: domain.SubscriptionExpired}, nil)
	repo.On("FindPlan", mock.Anything, domain.PlanBasic).Return(basicPlan(), nil)

	plan, err := svc.EffectivePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanBasic, plan.Tier)
}

// --- ChangePlan ---

func TestChangePlanCreatesSubscription(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	userID := uuid.New()
	repo.On("FindPlan", mock.Anything, domain.PlanUltra).Return(ultraPlan(), nil)
	repo.On("FindByUser", mock.Anything, userID).Return(nil, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.UserID == userID &&
			sub.Tier == domain.PlanUltra &&
			sub.Status == domain.SubscriptionActive &&
			sub.RenewsAt != nil && sub.RenewsAt.After(time.Now())
	})).Return(nil)

	sub, err := svc.ChangePlan(context.Background(), userID, domain.PlanUltra)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanUltra, sub.Tier)
	repo.AssertExpectations(t)
}

func TestChangePlanReactivatesExisting(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	userID := uuid.New()
	existing := &domain.Subscription{
		ID:     uuid.New(),
		UserID: userID,
		Tier:   domain.PlanBasic,
		Status: domain.SubscriptionCanceled,
	}
	repo.On("FindPlan", mock.Anything, domain.PlanUltra).Return(ultraPlan(), nil)
	repo.On("FindByUser", mock.Anything, userID).Return(existing, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.ID == existing.ID && sub.Status == domain.SubscriptionActive
	})).Return(nil)

	sub, err := svc.ChangePlan(context.Background(), userID, domain.PlanUltra)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sub.ID)
}

func TestChangePlanRejectsUnknownTier(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("FindPlan", mock.Anything, domain.PlanTier("gold")).Return(nil, errors.ErrPlanNotFound)

	_, err := svc.ChangePlan(context.Background(), uuid.New(), domain.PlanTier("gold"))
	assert.Equal(t, errors.ErrPlanNotFound, err)
	repo.AssertNotCalled(t, "Upsert")
}

// --- Plan qualities ---

func TestPlanQualitiesLadder(t *testing.T) {
	assert.Equal(t, []domain.VideoQuality{domain.QualitySD}, basicPlan().Qualities())
	assert.Equal(t,
		[]domain.VideoQuality{domain.QualitySD, domain.QualityHD, domain.QualityUHD},
		ultraPlan().Qualities())
}
