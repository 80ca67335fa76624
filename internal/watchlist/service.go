// Package watchlist implements the per-profile "My List".
package watchlist

import (
	"context"

	"flicks/internal/domain"

	"github.com/google/uuid"
)

// Repository persists watchlist entries.
type Repository interface {
	Add(ctx context.Context, profileID, contentID uuid.UUID) error
	Remove(ctx context.Context, profileID, contentID uuid.UUID) error
	List(ctx context.Context, profileID uuid.UUID) ([]*domain.WatchlistItem, error)
}

// ContentFinder verifies a content id exists before listing it.
type ContentFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
}

type Service struct {
	repo    Repository
	content ContentFinder
}

func NewService(repo Repository, content ContentFinder) *Service {
	return &Service{repo: repo, content: content}
}

// Add is idempotent.
func (s *Service) Add(ctx context.Context, profileID, contentID uuid.UUID) error {
	if _, err := s.content.FindByID(ctx, contentID); err != nil {
		return err
	}
	return s.repo.Add(ctx, profileID, contentID)
}

func (s *Service) Remove(ctx context.Context, profileID, contentID uuid.UUID) error {
	return s.repo.Remove(ctx, profileID, contentID)
}

func (s *Service) List(ctx context.Context, profileID uuid.UUID) ([]*domain.WatchlistItem, error) {
	return s.repo.List(ctx, profileID)
}
