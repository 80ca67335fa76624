package postgres

import (
	"context"
	"database/sql"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ContentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `
	id, metadata_id, content_type, title, stream_path, duration_sec,
	completion_threshold_sec, is_kids_safe, popularity, created_at`

func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content (
			id, metadata_id, content_type, title, stream_path, duration_sec,
			completion_threshold_sec, is_kids_safe, popularity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, content.ID, content.MetadataID, content.Type, content.Title,
		content.StreamPath, content.DurationSec, content.CompletionThresholdSec,
		content.IsKidsSafe, content.Popularity, content.CreatedAt)
	return err
}

func (r *ContentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	var content domain.Content
	err := r.db.GetContext(ctx, &content,
		`SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrContentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find content")
	}
	return &content, nil
}

func (r *ContentRepository) Trending(ctx context.Context, limit int, kidsOnly bool) ([]*domain.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content`
	if kidsOnly {
		query += ` WHERE is_kids_safe = true`
	}
	query += ` ORDER BY popularity DESC LIMIT $1`

	var items []*domain.Content
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list trending content")
	}
	return items, nil
}

func (r *ContentRepository) CreateEpisode(ctx context.Context, ep *domain.Episode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO episodes (
			id, content_id, season, episode, title, stream_path, duration_sec
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ep.ID, ep.ContentID, ep.Season, ep.Episode, ep.Title, ep.StreamPath, ep.DurationSec)
	return err
}

func (r *ContentRepository) FindEpisode(ctx context.Context, contentID uuid.UUID, season, episode int) (*domain.Episode, error) {
	var ep domain.Episode
	err := r.db.GetContext(ctx, &ep, `
		SELECT id, content_id, season, episode, title, stream_path, duration_sec
		FROM episodes
		WHERE content_id = $1 AND season = $2 AND episode = $3
	`, contentID, season, episode)
	if err == sql.ErrNoRows {
		return nil, errors.ErrContentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find episode")
	}
	return &ep, nil
}

// Structure returns the per-season episode counts the resume resolver walks.
func (r *ContentRepository) Structure(ctx context.Context, contentID uuid.UUID) (*domain.SeriesStructure, error) {
	var seasons []domain.SeasonLayout
	err := r.db.SelectContext(ctx, &seasons, `
		SELECT season, COUNT(*) AS episode_count
		FROM episodes
		WHERE content_id = $1
		GROUP BY season
		ORDER BY season ASC
	`, contentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load series structure")
	}
	return &domain.SeriesStructure{ContentID: contentID, Seasons: seasons}, nil
}
