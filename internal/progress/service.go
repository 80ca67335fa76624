// Package progress persists playback checkpoints and derives resume and
// continue-watching decisions from them.
package progress

import (
	"context"
	"time"

	"flicks/internal/domain"
	"flicks/pkg/config"
	"flicks/pkg/logger"

	"github.com/google/uuid"
)

// Repository persists watch-progress checkpoints.
type Repository interface {
	// Upsert writes the checkpoint, merging the episode map into any
	// existing row. Rows are only overwritten by later-recorded
	// checkpoints; stale writes are silently skipped.
	Upsert(ctx context.Context, cp *domain.WatchProgress) error
	// Find returns nil without error when no checkpoint exists.
	Find(ctx context.Context, profileID, contentID uuid.UUID) (*domain.WatchProgress, error)
	Feed(ctx context.Context, profileID uuid.UUID, limit int) ([]*domain.WatchProgress, error)
}

// EpisodeContext disambiguates series checkpoints.
type EpisodeContext struct {
	Season  int `json:"season" validate:"required,min=1"`
	Episode int `json:"episode" validate:"required,min=1"`
}

// Service records playback positions and serves resume decisions.
type Service struct {
	repo   Repository
	cfg    config.ProgressConfig
	logger logger.Logger
}

// NewService constructs a progress Service.
func NewService(repo Repository, cfg config.ProgressConfig, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// Record upserts a playback checkpoint. Invalid input and save failures are
// logged and dropped: losing one cadence interval of progress is the
// documented tolerance, interrupting playback over it is not.
func (s *Service) Record(ctx context.Context, profileID, contentID uuid.UUID, position, duration int, ep *EpisodeContext, recordedAt time.Time) {
	if position < 0 || duration < 0 {
		s.logger.Warn("progress checkpoint rejected", map[string]interface{}{
			"profile_id": profileID.String(),
			"content_id": contentID.String(),
			"position":   position,
			"duration":   duration,
		})
		return
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	cp := &domain.WatchProgress{
		ProfileID:       profileID,
		ContentID:       contentID,
		LastPosition:    position,
		Duration:        duration,
		EpisodeProgress: domain.EpisodeProgressMap{},
		RecordedAt:      recordedAt,
		UpdatedAt:       time.Now().UTC(),
	}
	if ep != nil {
		if ep.Season < 1 || ep.Episode < 1 {
			s.logger.Warn("progress checkpoint rejected", map[string]interface{}{
				"profile_id": profileID.String(),
				"content_id": contentID.String(),
				"season":     ep.Season,
				"episode":    ep.Episode,
			})
			return
		}
		cp.CurrentSeason = ep.Season
		cp.CurrentEpisode = ep.Episode
		cp.EpisodeProgress[domain.EpisodeKey(ep.Season, ep.Episode)] = position
	}

	if err := s.repo.Upsert(ctx, cp); err != nil {
		s.logger.Warn("progress save dropped", map[string]interface{}{
			"profile_id": profileID.String(),
			"content_id": contentID.String(),
			"error":      err.Error(),
		})
	}
}

// Get returns the checkpoint, or nil when the profile has none for the
// content. Absence is first use, not an error.
func (s *Service) Get(ctx context.Context, profileID, contentID uuid.UUID) (*domain.WatchProgress, error) {
	return s.repo.Find(ctx, profileID, contentID)
}

// ContinueWatchingFeed returns checkpoints newest first, one per content.
func (s *Service) ContinueWatchingFeed(ctx context.Context, profileID uuid.UUID, limit int) ([]*domain.WatchProgress, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Feed(ctx, profileID, limit)
}

// ThresholdFor picks the completion threshold for a piece of content: the
// per-content override when set, otherwise the type default.
func (s *Service) ThresholdFor(content *domain.Content) int {
	if content.CompletionThresholdSec > 0 {
		return content.CompletionThresholdSec
	}
	if content.Type == domain.ContentSeries {
		return int(s.cfg.EpisodeThreshold.Seconds())
	}
	return int(s.cfg.MovieThreshold.Seconds())
}

// Resolve computes the resume target for a checkpoint against the content's
// structure and threshold. Thin wrapper over the pure resolver so callers
// outside the package do not duplicate threshold selection.
func (s *Service) Resolve(p *domain.WatchProgress, content *domain.Content, structure *domain.SeriesStructure) ResumeTarget {
	return ResolveResumeTarget(p, structure, s.ThresholdFor(content))
}
