// Package catalog serves content browsing backed by the local catalog and
// the external metadata API.
package catalog

import (
	"context"
	"fmt"

	"flicks/internal/catalog/metadata"
	"flicks/internal/domain"
	"flicks/pkg/cache"
	"flicks/pkg/config"
	"flicks/pkg/logger"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Repository persists catalog entries and series structure.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	Trending(ctx context.Context, limit int, kidsOnly bool) ([]*domain.Content, error)
	Structure(ctx context.Context, contentID uuid.UUID) (*domain.SeriesStructure, error)
	FindEpisode(ctx context.Context, contentID uuid.UUID, season, episode int) (*domain.Episode, error)
}

// MetadataClient fetches detail objects from the external API.
type MetadataClient interface {
	MovieDetail(ctx context.Context, id int64) (*metadata.Detail, error)
	SeriesDetail(ctx context.Context, id int64) (*metadata.Detail, error)
}

// ContentDetail is a catalog entry joined with its external metadata.
// Metadata is nil when the external API is unavailable; browsing degrades to
// local fields rather than failing.
type ContentDetail struct {
	Content  *domain.Content  `json:"content"`
	Metadata *metadata.Detail `json:"metadata,omitempty"`
}

// Service answers browse queries, caching metadata in-process (LRU) with a
// shared Redis layer behind it.
type Service struct {
	repo     Repository
	client   MetadataClient
	redis    *cache.RedisCache
	local    *lru.Cache[int64, *metadata.Detail]
	cfg      config.MetadataConfig
	logger   logger.Logger
}

// NewService constructs the catalog service. redis may be shared with other
// components; the LRU is private.
func NewService(repo Repository, client MetadataClient, redis *cache.RedisCache, cfg config.MetadataConfig, log logger.Logger) (*Service, error) {
	local, err := lru.New[int64, *metadata.Detail](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:   repo,
		client: client,
		redis:  redis,
		local:  local,
		cfg:    cfg,
		logger: log,
	}, nil
}

// Get returns the bare catalog entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	return s.repo.FindByID(ctx, id)
}

// Trending lists catalog entries by popularity. Kids profiles only see
// kids-safe titles.
func (s *Service) Trending(ctx context.Context, limit int, kidsOnly bool) ([]*domain.Content, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.Trending(ctx, limit, kidsOnly)
}

// Detail returns the catalog entry with its external metadata attached.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*ContentDetail, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := s.lookupMetadata(ctx, content)
	return &ContentDetail{Content: content, Metadata: meta}, nil
}

// Structure returns the season/episode layout for a series.
func (s *Service) Structure(ctx context.Context, id uuid.UUID) (*domain.SeriesStructure, error) {
	return s.repo.Structure(ctx, id)
}

// Episode returns one playable episode row.
func (s *Service) Episode(ctx context.Context, contentID uuid.UUID, season, episode int) (*domain.Episode, error) {
	return s.repo.FindEpisode(ctx, contentID, season, episode)
}

func (s *Service) lookupMetadata(ctx context.Context, content *domain.Content) *metadata.Detail {
	if detail, ok := s.local.Get(content.MetadataID); ok {
		return detail
	}

	key := metadataKey(content.MetadataID)
	var cached metadata.Detail
	if err := s.redis.Get(ctx, key, &cached); err == nil {
		s.local.Add(content.MetadataID, &cached)
		return &cached
	} else if !cache.IsMiss(err) {
		s.logger.Warn("metadata cache read failed", map[string]interface{}{"error": err.Error()})
	}

	var detail *metadata.Detail
	var err error
	if content.Type == domain.ContentSeries {
		detail, err = s.client.SeriesDetail(ctx, content.MetadataID)
	} else {
		detail, err = s.client.MovieDetail(ctx, content.MetadataID)
	}
	if err != nil {
		// Browsing must not break when the metadata API is down.
		s.logger.Warn("metadata fetch failed", map[string]interface{}{
			"metadata_id": content.MetadataID,
			"error":       err.Error(),
		})
		return nil
	}

	s.local.Add(content.MetadataID, detail)
	if err := s.redis.Set(ctx, key, detail, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("metadata cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return detail
}

func metadataKey(id int64) string {
	return fmt.Sprintf("metadata:detail:%d", id)
}
