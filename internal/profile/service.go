// Package profile manages the viewing profiles under an account.
package profile

import (
	"context"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/errors"

	"github.com/google/uuid"
)

// Repository persists profiles.
type Repository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Profile, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, profile *domain.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRequest captures a new profile.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,profile_name"`
	AvatarID int    `json:"avatar_id" validate:"min=0"`
	IsKids   bool   `json:"is_kids"`
}

// UpdateRequest carries editable profile fields.
type UpdateRequest struct {
	Name     string `json:"name" validate:"required,profile_name"`
	AvatarID int    `json:"avatar_id" validate:"min=0"`
	IsKids   bool   `json:"is_kids"`
}

// Service manages profile CRUD under the per-account limit.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*domain.Profile, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxProfilesPerAccount {
		return nil, errors.ErrProfileLimitReached
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Name == req.Name {
			return nil, errors.ErrProfileNameTaken
		}
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		AvatarID:  req.AvatarID,
		IsKids:    req.IsKids,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Profile, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetOwned returns the profile only if it belongs to userID. All
// profile-scoped endpoints go through this check.
func (s *Service) GetOwned(ctx context.Context, userID, profileID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, errors.ErrProfileNotOwned
	}
	return profile, nil
}

func (s *Service) Update(ctx context.Context, userID, profileID uuid.UUID, req *UpdateRequest) (*domain.Profile, error) {
	profile, err := s.GetOwned(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	profile.Name = req.Name
	profile.AvatarID = req.AvatarID
	profile.IsKids = req.IsKids
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Delete(ctx context.Context, userID, profileID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, userID, profileID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, profileID)
}
