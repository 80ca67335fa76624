package postgres

import (
	"context"
	"database/sql"
	"time"

	"flicks/internal/domain"
	"flicks/internal/session"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DeviceSessionRepository struct {
	db *sqlx.DB
}

func NewDeviceSessionRepository(db *sqlx.DB) *DeviceSessionRepository {
	return &DeviceSessionRepository{db: db}
}

// AdmitWithinLimit performs the whole admission decision in one transaction,
// serialized per account by locking the user row. This closes the window
// where two new devices both read "count < limit" before either insert.
func (r *DeviceSessionRepository) AdmitWithinLimit(ctx context.Context, sess *domain.DeviceSession, deviceLimit int, evictOldest bool) (*session.AdmitOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin admission transaction")
	}
	defer tx.Rollback()

	// Serialize concurrent admissions for this account.
	var userID uuid.UUID
	err = tx.GetContext(ctx, &userID,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, sess.UserID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock account")
	}

	// Known fingerprint: idempotent re-admission, refresh activity only.
	var existing domain.DeviceSession
	err = tx.GetContext(ctx, &existing, `
		SELECT id, user_id, device_fingerprint, device_name, device_type, last_activity, created_at
		FROM device_sessions
		WHERE user_id = $1 AND device_fingerprint = $2
	`, sess.UserID, sess.DeviceFingerprint)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to look up device session")
	}
	if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE device_sessions
			SET last_activity = $2, device_name = $3, device_type = $4
			WHERE id = $1
		`, existing.ID, sess.LastActivity, sess.DeviceName, sess.DeviceType)
		if err != nil {
			return nil, errors.Wrap(err, "failed to refresh device session")
		}
		existing.LastActivity = sess.LastActivity
		existing.DeviceName = sess.DeviceName
		existing.DeviceType = sess.DeviceType
		if err := tx.Commit(); err != nil {
			return nil, errors.Wrap(err, "failed to commit admission")
		}
		return &session.AdmitOutcome{Admitted: true, Session: &existing}, nil
	}

	var count int
	if err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM device_sessions WHERE user_id = $1`, sess.UserID); err != nil {
		return nil, errors.Wrap(err, "failed to count device sessions")
	}

	var evicted *domain.DeviceSession
	if count >= deviceLimit {
		if !evictOldest {
			if err := tx.Commit(); err != nil {
				return nil, errors.Wrap(err, "failed to commit admission")
			}
			return &session.AdmitOutcome{Admitted: false}, nil
		}

		victim := &domain.DeviceSession{}
		err = tx.GetContext(ctx, victim, `
			DELETE FROM device_sessions
			WHERE id = (
				SELECT id FROM device_sessions
				WHERE user_id = $1
				ORDER BY last_activity ASC
				LIMIT 1
			)
			RETURNING id, user_id, device_fingerprint, device_name, device_type, last_activity, created_at
		`, sess.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to evict oldest device session")
		}
		evicted = victim
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO device_sessions (
			id, user_id, device_fingerprint, device_name, device_type, last_activity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sess.ID, sess.UserID, sess.DeviceFingerprint, sess.DeviceName, sess.DeviceType,
		sess.LastActivity, sess.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create device session")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit admission")
	}
	return &session.AdmitOutcome{Admitted: true, Session: sess, Evicted: evicted}, nil
}

func (r *DeviceSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceSession, error) {
	var sessions []*domain.DeviceSession
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, user_id, device_fingerprint, device_name, device_type, last_activity, created_at
		FROM device_sessions
		WHERE user_id = $1
		ORDER BY last_activity ASC
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list device sessions")
	}
	return sessions, nil
}

func (r *DeviceSessionRepository) TouchActivity(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE device_sessions SET last_activity = $2 WHERE id = $1
	`, sessionID, at)
	if err != nil {
		return errors.Wrap(err, "failed to touch device session")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.ErrSessionNotFound
	}
	return nil
}

func (r *DeviceSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM device_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete device session")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read delete result")
	}
	return n > 0, nil
}

func (r *DeviceSessionRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM device_sessions WHERE last_activity < $1`, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete stale device sessions")
	}
	return result.RowsAffected()
}
