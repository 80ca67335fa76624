// Package playback assembles everything the player needs to start a title:
// manifest URL, permitted qualities, and where to resume.
package playback

import (
	"context"
	"strings"

	"flicks/internal/catalog"
	"flicks/internal/domain"
	"flicks/internal/progress"
	"flicks/internal/subscription"
	"flicks/pkg/config"
	"flicks/pkg/errors"

	"github.com/google/uuid"
)

// Descriptor is the player bootstrap payload.
type Descriptor struct {
	ContentID              uuid.UUID              `json:"content_id"`
	ManifestURL            string                 `json:"manifest_url"`
	Qualities              []domain.VideoQuality  `json:"qualities"`
	Resume                 progress.ResumeTarget  `json:"resume"`
	CompletionThresholdSec int                    `json:"completion_threshold_sec"`
	DurationSec            int                    `json:"duration_sec"`
}

type Service struct {
	catalog      *catalog.Service
	progress     *progress.Service
	subscription *subscription.Service
	stream       config.StreamConfig
}

func NewService(cat *catalog.Service, prog *progress.Service, sub *subscription.Service, stream config.StreamConfig) *Service {
	return &Service{
		catalog:      cat,
		progress:     prog,
		subscription: sub,
		stream:       stream,
	}
}

// Describe resolves the playback descriptor for a profile and title. The
// resume decision is computed from the stored checkpoint and, for series,
// the season/episode structure; no checkpoint means start from zero.
func (s *Service) Describe(ctx context.Context, userID, profileID, contentID uuid.UUID) (*Descriptor, error) {
	content, err := s.catalog.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}

	plan, err := s.subscription.EffectivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	cp, err := s.progress.Get(ctx, profileID, contentID)
	if err != nil {
		return nil, err
	}

	var structure *domain.SeriesStructure
	if content.Type == domain.ContentSeries {
		structure, err = s.catalog.Structure(ctx, contentID)
		if err != nil {
			return nil, err
		}
	}

	resume := s.progress.Resolve(cp, content, structure)

	manifest, duration, err := s.resolveStream(ctx, content, resume)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		ContentID:              contentID,
		ManifestURL:            manifest,
		Qualities:              plan.Qualities(),
		Resume:                 resume,
		CompletionThresholdSec: s.progress.ThresholdFor(content),
		DurationSec:            duration,
	}, nil
}

func (s *Service) resolveStream(ctx context.Context, content *domain.Content, resume progress.ResumeTarget) (string, int, error) {
	if content.Type != domain.ContentSeries {
		return s.manifestURL(content.StreamPath), content.DurationSec, nil
	}

	// Series without any episodes rows cannot be played.
	if resume.Season == 0 || resume.Episode == 0 {
		structure, err := s.catalog.Structure(ctx, content.ID)
		if err != nil {
			return "", 0, err
		}
		if len(structure.Seasons) == 0 {
			return "", 0, errors.ErrContentNotFound
		}
		resume.Season = structure.Seasons[0].Season
		resume.Episode = 1
	}

	ep, err := s.catalog.Episode(ctx, content.ID, resume.Season, resume.Episode)
	if err != nil {
		return "", 0, err
	}
	return s.manifestURL(ep.StreamPath), ep.DurationSec, nil
}

func (s *Service) manifestURL(streamPath string) string {
	base := strings.TrimRight(s.stream.ManifestBaseURL, "/")
	return base + "/" + strings.TrimLeft(streamPath, "/")
}
