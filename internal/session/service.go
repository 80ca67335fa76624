// Package session implements device-session admission control: which devices
// may stream under an account's plan, and which one goes when the limit hits.
package session

import (
	"context"
	"fmt"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/config"
	"flicks/pkg/logger"

	"github.com/google/uuid"
)

// AdmitOutcome is what the repository reports for one atomic admission
// attempt. The check and the insert run in a single per-user transaction so
// two concurrent new devices can never both slip under the limit.
type AdmitOutcome struct {
	Admitted bool
	Session  *domain.DeviceSession
	// Evicted is set when the oldest session was removed to make room.
	Evicted *domain.DeviceSession
}

// Repository persists device sessions.
type Repository interface {
	// AdmitWithinLimit upserts the session if its fingerprint is already
	// present or the account is under deviceLimit. When evictOldest is set
	// and the account is at the limit, the least-recently-active session is
	// deleted first. The whole decision is serialized per user.
	AdmitWithinLimit(ctx context.Context, sess *domain.DeviceSession, deviceLimit int, evictOldest bool) (*AdmitOutcome, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceSession, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, sessionID uuid.UUID) (bool, error)
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// AdmitResult is returned to the profile-selection flow.
type AdmitResult struct {
	Allowed bool                    `json:"allowed"`
	Session *domain.DeviceSession   `json:"session,omitempty"`
	Evicted *domain.DeviceSession   `json:"evicted,omitempty"`
	// ActiveSessions is populated only when admission is blocked, so the
	// user can pick a device to sign out. Oldest activity first.
	ActiveSessions []*domain.DeviceSession `json:"active_sessions,omitempty"`
	// FailedOpen marks results where storage failed and admission was
	// granted anyway. Deliberate policy: never lock a paying user out
	// because the session store is down.
	FailedOpen bool `json:"-"`
}

// Service decides device admission and maintains session liveness.
type Service struct {
	repo   Repository
	policy config.EvictionPolicy
	logger logger.Logger
}

// NewService constructs a Service with the given eviction policy.
func NewService(repo Repository, policy config.EvictionPolicy, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		logger: log,
	}
}

// Admit decides whether the device identified by fingerprint may stream for
// userID under deviceLimit. Re-admitting a known fingerprint always succeeds
// and never counts against the limit a second time.
func (s *Service) Admit(ctx context.Context, userID uuid.UUID, fingerprint string, info DeviceInfo, deviceLimit int) (*AdmitResult, error) {
	if deviceLimit < 1 {
		return nil, fmt.Errorf("device limit must be at least 1, got %d", deviceLimit)
	}

	now := time.Now().UTC()
	sess := &domain.DeviceSession{
		ID:                uuid.New(),
		UserID:            userID,
		DeviceFingerprint: fingerprint,
		DeviceName:        info.Name,
		DeviceType:        info.Type,
		LastActivity:      now,
		CreatedAt:         now,
	}

	outcome, err := s.repo.AdmitWithinLimit(ctx, sess, deviceLimit, s.policy == config.EvictionOldest)
	if err != nil {
		// Fail-open: storage trouble must not stop playback. The session
		// row is simply missing until the next successful admit.
		s.logger.Error("session admission failed open", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return &AdmitResult{Allowed: true, FailedOpen: true}, nil
	}

	if outcome.Admitted {
		if outcome.Evicted != nil {
			s.logger.Info("evicted oldest device session", map[string]interface{}{
				"user_id":     userID.String(),
				"evicted":     outcome.Evicted.ID.String(),
				"device_name": outcome.Evicted.DeviceName,
			})
		}
		return &AdmitResult{Allowed: true, Session: outcome.Session, Evicted: outcome.Evicted}, nil
	}

	// Blocked: hand back the active sessions so the user can free a slot.
	active, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("session list failed open", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return &AdmitResult{Allowed: true, FailedOpen: true}, nil
	}

	return &AdmitResult{Allowed: false, ActiveSessions: active}, nil
}

// Heartbeat refreshes last_activity. Fire-and-forget: failures are logged,
// never surfaced, and the next heartbeat will catch up.
func (s *Service) Heartbeat(ctx context.Context, sessionID uuid.UUID) {
	if err := s.repo.TouchActivity(ctx, sessionID, time.Now().UTC()); err != nil {
		s.logger.Warn("session heartbeat dropped", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
	}
}

// Revoke deletes the session. Returns false if it did not exist or the
// delete failed; callers branch UI state on this.
func (s *Service) Revoke(ctx context.Context, sessionID uuid.UUID) bool {
	deleted, err := s.repo.Delete(ctx, sessionID)
	if err != nil {
		s.logger.Error("session revoke failed", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
		return false
	}
	return deleted
}

// List returns the account's sessions, oldest activity first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceSession, error) {
	return s.repo.ListByUser(ctx, userID)
}

// PruneStale removes sessions idle since before cutoff.
func (s *Service) PruneStale(ctx context.Context, cutoff time.Time) int64 {
	n, err := s.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		s.logger.Warn("stale session prune failed", map[string]interface{}{"error": err.Error()})
		return 0
	}
	if n > 0 {
		s.logger.Info("pruned stale device sessions", map[string]interface{}{"count": n})
	}
	return n
}
