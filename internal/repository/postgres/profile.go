package postgres

import (
	"context"
	"database/sql"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, user_id, name, avatar_id, is_kids, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, profile.ID, profile.UserID, profile.Name, profile.AvatarID,
		profile.IsKids, profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile, `
		SELECT id, user_id, name, avatar_id, is_kids, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find profile")
	}
	return &profile, nil
}

func (r *ProfileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	err := r.db.SelectContext(ctx, &profiles, `
		SELECT id, user_id, name, avatar_id, is_kids, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}
	return profiles, nil
}

func (r *ProfileRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count profiles")
	}
	return count, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = $2, avatar_id = $3, is_kids = $4, updated_at = $5
		WHERE id = $1
	`, profile.ID, profile.Name, profile.AvatarID, profile.IsKids, profile.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to update profile")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete profile")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.ErrProfileNotFound
	}
	return nil
}
