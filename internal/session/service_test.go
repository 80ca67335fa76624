package session

import (
	"context"
	"testing"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/config"
	"flicks/pkg/errors"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) AdmitWithinLimit(ctx context.Context, sess *domain.DeviceSession, deviceLimit int, evictOldest bool) (*AdmitOutcome, error) {
	args := m.Called(ctx, sess, deviceLimit, evictOldest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AdmitOutcome), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeviceSession), args.Error(1)
}

func (m *MockRepository) TouchActivity(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, sessionID, at)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func testDevice() DeviceInfo {
	return DeviceInfo{Name: "Windows PC", Type: domain.DeviceComputer}
}

// --- Admit ---

func TestAdmitUnderLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	userID := uuid.New()
	repo.On("AdmitWithinLimit", mock.Anything, mock.Anything, 2, false).
		Return(&AdmitOutcome{Admitted: true, Session: &domain.DeviceSession{UserID: userID}}, nil)

	result, err := svc.Admit(context.Background(), userID, "fp-1", testDevice(), 2)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.False(t, result.FailedOpen)
	assert.Nil(t, result.Evicted)
	repo.AssertExpectations(t)
}

func TestAdmitBlockedAtLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	userID := uuid.New()
	active := []*domain.DeviceSession{
		{ID: uuid.New(), UserID: userID, DeviceName: "iPhone"},
		{ID: uuid.New(), UserID: userID, DeviceName: "Mac"},
	}
	repo.On("AdmitWithinLimit", mock.Anything, mock.Anything, 2, false).
		Return(&AdmitOutcome{Admitted: false}, nil)
	repo.On("ListByUser", mock.Anything, userID).Return(active, nil)

	result, err := svc.Admit(context.Background(), userID, "fp-new", testDevice(), 2)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Len(t, result.ActiveSessions, 2)
	repo.AssertExpectations(t)
}

func TestAdmitEvictsOldest(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionOldest, logger.NewNop())

	userID := uuid.New()
	evicted := &domain.DeviceSession{ID: uuid.New(), UserID: userID, DeviceName: "Roku"}
	repo.On("AdmitWithinLimit", mock.Anything, mock.Anything, 1, true).
		Return(&AdmitOutcome{Admitted: true, Session: &domain.DeviceSession{UserID: userID}, Evicted: evicted}, nil)

	result, err := svc.Admit(context.Background(), userID, "fp-new", testDevice(), 1)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	require.NotNil(t, result.Evicted)
	assert.Equal(t, "Roku", result.Evicted.DeviceName)
	repo.AssertExpectations(t)
}

func TestAdmitFailsOpenOnStorageError(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	repo.On("AdmitWithinLimit", mock.Anything, mock.Anything, 2, false).
		Return(nil, errors.Wrap(assert.AnError, "db down"))

	result, err := svc.Admit(context.Background(), uuid.New(), "fp", testDevice(), 2)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.FailedOpen)
	assert.Nil(t, result.Session)
}

func TestAdmitFailsOpenWhenListingBlockedSessionsErrors(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	userID := uuid.New()
	repo.On("AdmitWithinLimit", mock.Anything, mock.Anything, 1, false).
		Return(&AdmitOutcome{Admitted: false}, nil)
	repo.On("ListByUser", mock.Anything, userID).Return(nil, assert.AnError)

	result, err := svc.Admit(context.Background(), userID, "fp", testDevice(), 1)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.FailedOpen)
}

func TestAdmitRejectsNonPositiveLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	_, err := svc.Admit(context.Background(), uuid.New(), "fp", testDevice(), 0)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "AdmitWithinLimit")
}

func TestAdmitKnownFingerprintIsIdempotent(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	userID := uuid.New()
	existing := &domain.DeviceSession{ID: uuid.New(), UserID: userID, DeviceFingerprint: "fp-known"}
	// Repository reports the existing row; no new session, no eviction.
	repo.On("AdmitWithinLimit", mock.Anything, mock.MatchedBy(func(s *domain.DeviceSession) bool {
		return s.DeviceFingerprint == "fp-known"
	}), 1, false).Return(&AdmitOutcome{Admitted: true, Session: existing}, nil)

	result, err := svc.Admit(context.Background(), userID, "fp-known", testDevice(), 1)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, existing.ID, result.Session.ID)
	assert.Nil(t, result.Evicted)
}

// --- Heartbeat / Revoke / Prune ---

func TestHeartbeatSwallowsErrors(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	id := uuid.New()
	repo.On("TouchActivity", mock.Anything, id, mock.Anything).Return(errors.ErrSessionNotFound)

	// Must not panic or surface anything.
	svc.Heartbeat(context.Background(), id)
	repo.AssertExpectations(t)
}

func TestRevoke(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	known := uuid.New()
	unknown := uuid.New()
	repo.On("Delete", mock.Anything, known).Return(true, nil)
	repo.On("Delete", mock.Anything, unknown).Return(false, nil)

	assert.True(t, svc.Revoke(context.Background(), known))
	assert.False(t, svc.Revoke(context.Background(), unknown))
}

func TestRevokeReturnsFalseOnError(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(false, assert.AnError)

	assert.False(t, svc.Revoke(context.Background(), id))
}

func TestPruneStale(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	repo.On("DeleteStale", mock.Anything, cutoff).Return(int64(3), nil)

	assert.Equal(t, int64(3), svc.PruneStale(context.Background(), cutoff))
}

func TestPruneStaleReturnsZeroOnError(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, config.EvictionBlock, logger.NewNop())

	cutoff := time.Now().UTC()
	repo.On("DeleteStale", mock.Anything, cutoff).Return(int64(0), assert.AnError)

	assert.Equal(t, int64(0), svc.PruneStale(context.Background(), cutoff))
}
