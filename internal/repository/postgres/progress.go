package postgres

import (
	"context"
	"database/sql"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProgressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert writes a checkpoint. The episode map is merged, not replaced, so a
// series row keeps the positions of every episode watched. The conditional
// update makes the most recently *recorded* checkpoint win regardless of
// which request reached the database last.
func (r *ProgressRepository) Upsert(ctx context.Context, cp *domain.WatchProgress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_progress (
			profile_id, content_id, last_position, duration,
			current_season, current_episode, episode_progress,
			recorded_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (profile_id, content_id) DO UPDATE SET
			last_position = EXCLUDED.last_position,
			duration = EXCLUDED.duration,
			current_season = EXCLUDED.current_season,
			current_episode = EXCLUDED.current_episode,
			episode_progress = watch_progress.episode_progress || EXCLUDED.episode_progress,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = EXCLUDED.updated_at
		WHERE watch_progress.recorded_at <= EXCLUDED.recorded_at
	`, cp.ProfileID, cp.ContentID, cp.LastPosition, cp.Duration,
		cp.CurrentSeason, cp.CurrentEpisode, cp.EpisodeProgress,
		cp.RecordedAt, cp.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to upsert watch progress")
	}
	return nil
}

// Find returns nil without error when the profile has no checkpoint for the
// content; absence means first use.
func (r *ProgressRepository) Find(ctx context.Context, profileID, contentID uuid.UUID) (*domain.WatchProgress, error) {
	var cp domain.WatchProgress
	err := r.db.GetContext(ctx, &cp, `
		SELECT profile_id, content_id, last_position, duration,
		       current_season, current_episode, episode_progress,
		       recorded_at, updated_at
		FROM watch_progress
		WHERE profile_id = $1 AND content_id = $2
	`, profileID, contentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find watch progress")
	}
	return &cp, nil
}

func (r *ProgressRepository) Feed(ctx context.Context, profileID uuid.UUID, limit int) ([]*domain.WatchProgress, error) {
	var feed []*domain.WatchProgress
	err := r.db.SelectContext(ctx, &feed, `
		SELECT profile_id, content_id, last_position, duration,
		       current_season, current_episode, episode_progress,
		       recorded_at, updated_at
		FROM watch_progress
		WHERE profile_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, profileID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load continue watching feed")
	}
	return feed, nil
}
