package postgres

import (
	"context"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type WatchlistRepository struct {
	db *sqlx.DB
}

func NewWatchlistRepository(db *sqlx.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add is idempotent; re-adding keeps the original added_at.
func (r *WatchlistRepository) Add(ctx context.Context, profileID, contentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (profile_id, content_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, content_id) DO NOTHING
	`, profileID, contentID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to add watchlist item")
	}
	return nil
}

func (r *WatchlistRepository) Remove(ctx context.Context, profileID, contentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE profile_id = $1 AND content_id = $2
	`, profileID, contentID)
	if err != nil {
		return errors.Wrap(err, "failed to remove watchlist item")
	}
	return nil
}

func (r *WatchlistRepository) List(ctx context.Context, profileID uuid.UUID) ([]*domain.WatchlistItem, error) {
	var items []*domain.WatchlistItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT profile_id, content_id, added_at
		FROM watchlist
		WHERE profile_id = $1
		ORDER BY added_at DESC
	`, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list watchlist")
	}
	return items, nil
}
