package playback

import (
	"context"
	"testing"
	"time"

	"flicks/internal/catalog"
	"flicks/internal/catalog/metadata"
	"flicks/internal/domain"
	"flicks/internal/progress"
	"flicks/internal/subscription"
	"flicks/pkg/cache"
	"flicks/pkg/config"
	"flicks/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes. Playback composes the real catalog, progress, and
// subscription services, so the fakes sit at the repository seams.

type fakeCatalogRepo struct {
	content  map[uuid.UUID]*domain.Content
	episodes map[string]*domain.Episode
	seasons  map[uuid.UUID][]domain.SeasonLayout
}

func episodeKey(contentID uuid.UUID, season, episode int) string {
	return contentID.String() + domain.EpisodeKey(season, episode)
}

func (f *fakeCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	c, ok := f.content[id]
	if !ok {
		return nil, assert.AnError
	}
	return c, nil
}

func (f *fakeCatalogRepo) Trending(ctx context.Context, limit int, kidsOnly bool) ([]*domain.Content, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Structure(ctx context.Context, contentID uuid.UUID) (*domain.SeriesStructure, error) {
	return &domain.SeriesStructure{ContentID: contentID, Seasons: f.seasons[contentID]}, nil
}

func (f *fakeCatalogRepo) FindEpisode(ctx context.Context, contentID uuid.UUID, season, episode int) (*domain.Episode, error) {
	ep, ok := f.episodes[episodeKey(contentID, season, episode)]
	if !ok {
		return nil, assert.AnError
	}
	return ep, nil
}

type fakeMetadataClient struct{}

func (fakeMetadataClient) MovieDetail(ctx context.Context, id int64) (*metadata.Detail, error) {
	return &metadata.Detail{ID: id}, nil
}

func (fakeMetadataClient) SeriesDetail(ctx context.Context, id int64) (*metadata.Detail, error) {
	return &metadata.Detail{ID: id}, nil
}

type fakeProgressRepo struct {
	rows map[string]*domain.WatchProgress
}

func progressKey(profileID, contentID uuid.UUID) string {
	return profileID.String() + contentID.String()
}

func (f *fakeProgressRepo) Upsert(ctx context.Context, cp *domain.WatchProgress) error {
	f.rows[progressKey(cp.ProfileID, cp.ContentID)] = cp
	return nil
}

func (f *fakeProgressRepo) Find(ctx context.Context, profileID, contentID uuid.UUID) (*domain.WatchProgress, error) {
	return f.rows[progressKey(profileID, contentID)], nil
}

func (f *fakeProgressRepo) Feed(ctx context.Context, profileID uuid.UUID, limit int) ([]*domain.WatchProgress, error) {
	return nil, nil
}

type fakeSubscriptionRepo struct {
	sub   *domain.Subscription
	plans map[domain.PlanTier]*domain.SubscriptionPlan
}

func (f *fakeSubscriptionRepo) ListPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	return nil, nil
}

func (f *fakeSubscriptionRepo) FindPlan(ctx context.Context, tier domain.PlanTier) (*domain.SubscriptionPlan, error) {
	return f.plans[tier], nil
}

func (f *fakeSubscriptionRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *domain.Subscription) error {
	f.sub = sub
	return nil
}

type fixture struct {
	svc       *Service
	catalog   *fakeCatalogRepo
	progress  *fakeProgressRepo
	userID    uuid.UUID
	profileID uuid.UUID
}

func newFixture(t *testing.T, tier domain.PlanTier) *fixture {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	catRepo := &fakeCatalogRepo{
		content:  map[uuid.UUID]*domain.Content{},
		episodes: map[string]*domain.Episode{},
		seasons:  map[uuid.UUID][]domain.SeasonLayout{},
	}
	catSvc, err := catalog.NewService(catRepo, fakeMetadataClient{}, rc,
		config.MetadataConfig{CacheTTL: time.Hour, CacheSize: 8}, logger.NewNop())
	require.NoError(t, err)

	progRepo := &fakeProgressRepo{rows: map[string]*domain.WatchProgress{}}
	progSvc := progress.NewService(progRepo, config.ProgressConfig{
		MovieThreshold:   120 * time.Second,
		EpisodeThreshold: 90 * time.Second,
	}, logger.NewNop())

	subRepo := &fakeSubscriptionRepo{
		plans: map[domain.PlanTier]*domain.SubscriptionPlan{
			domain.PlanBasic:   {Tier: domain.PlanBasic, DeviceLimit: 1, MaxQuality: domain.QualitySD, MonthlyPrice: decimal.NewFromFloat(7.99)},
			domain.PlanPremium: {Tier: domain.PlanPremium, DeviceLimit: 2, MaxQuality: domain.QualityHD, MonthlyPrice: decimal.NewFromFloat(12.99)},
		},
	}
	if tier != domain.PlanBasic {
		subRepo.sub = &domain.Subscription{Tier: tier, Status: domain.SubscriptionActive}
	}

	return &fixture{
		svc: NewService(catSvc, progSvc, subscription.NewService(subRepo),
			config.StreamConfig{ManifestBaseURL: "https://stream.local/hls/"}),
		catalog:   catRepo,
		progress:  progRepo,
		userID:    uuid.New(),
		profileID: uuid.New(),
	}
}

func (f *fixture) addMovie() *domain.Content {
	movie := &domain.Content{
		ID:          uuid.New(),
		MetadataID:  27205,
		Type:        domain.ContentMovie,
		StreamPath:  "movies/inception/master.m3u8",
		DurationSec: 8880,
	}
	f.catalog.content[movie.ID] = movie
	return movie
}

func (f *fixture) addSeries(seasons ...domain.SeasonLayout) *domain.Content {
	series := &domain.Content{ID: uuid.New(), MetadataID: 1396, Type: domain.ContentSeries}
	f.catalog.content[series.ID] = series
	f.catalog.seasons[series.ID] = seasons
	for _, layout := range seasons {
		for ep := 1; ep <= layout.EpisodeCount; ep++ {
			f.catalog.episodes[episodeKey(series.ID, layout.Season, ep)] = &domain.Episode{
				ID:          uuid.New(),
				ContentID:   series.ID,
				Season:      layout.Season,
				Episode:     ep,
				StreamPath:  "series/show/" + domain.EpisodeKey(layout.Season, ep) + "/master.m3u8",
				DurationSec: 2820,
			}
		}
	}
	return series
}

// --- Describe ---

func TestDescribeMovieFirstPlay(t *testing.T) {
	f := newFixture(t, domain.PlanPremium)
	movie := f.addMovie()

	desc, err := f.svc.Describe(context.Background(), f.userID, f.profileID, movie.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://stream.local/hls/movies/inception/master.m3u8", desc.ManifestURL)
	assert.Equal(t, 0, desc.Resume.Position)
	assert.Equal(t, 8880, desc.DurationSec)
	assert.Equal(t, 120, desc.CompletionThresholdSec)
	assert.Equal(t, []domain.VideoQuality{domain.QualitySD, domain.QualityHD}, desc.Qualities)
}

func TestDescribeMovieResumesMidway(t *testing.T) {
	f := newFixture(t, domain.PlanPremium)
	movie := f.addMovie()

	f.progress.rows[progressKey(f.profileID, movie.ID)] = &domain.WatchProgress{
		ProfileID:    f.profileID,
		ContentID:    movie.ID,
		LastPosition: 3200,
		Duration:     8880,
	}

	desc, err := f.svc.Describe(context.Background(), f.userID, f.profileID, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 3200, desc.Resume.Position)
}

func TestDescribeBasicFallbackLimitsQuality(t *testing.T) {
	f := newFixture(t, domain.PlanBasic)
	movie := f.addMovie()

	desc, err := f.svc.Describe(context.Background(), f.userID, f.profileID, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.VideoQuality{domain.QualitySD}, desc.Qualities)
}

func TestDescribeSeriesFirstPlayStartsAtFirstEpisode(t *testing.T) {
	f := newFixture(t, domain.PlanPremium)
	series := f.addSeries(domain.SeasonLayout{Season: 1, EpisodeCount: 7})

	desc, err := f.svc.Describe(context.Background(), f.userID, f.profileID, series.ID)
	require.NoError(t, err)
	assert.Contains(t, desc.ManifestURL, "s01e01")
	assert.Equal(t, 0, desc.Resume.Position)
	assert.Equal(t, 90, desc.CompletionThresholdSec)
}

func TestDescribeSeriesAdvancesPastFinishedEpisode(t *testing.T) {
	f := newFixture(t, domain.PlanPremium)
	series := f.addSeries(
		domain.SeasonLayout{Season: 1, EpisodeCount: 2},
		domain.SeasonLayout{Season: 2, EpisodeCount: 2},
	)

	f.progress.rows[progressKey(f.profileID, series.ID)] = &domain.WatchProgress{
		ProfileID:      f.profileID,
		ContentID:      series.ID,
		LastPosition:   2800,
		Duration:       2820,
		CurrentSeason:  1,
		CurrentEpisode: 2,
		EpisodeProgress: domain.EpisodeProgressMap{
			domain.EpisodeKey(1, 2): 2800,
		},
	}

	desc, err := f.svc.Describe(context.Background(), f.userID, f.profileID, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, desc.Resume.Season)
	assert.Equal(t, 1, desc.Resume.Episode)
	assert.Contains(t, desc.ManifestURL, "s02e01")
}

func TestDescribeEmptySeries(t *testing.T) {
	f := newFixture(t, domain.PlanPremium)
	series := f.addSeries()

	_, err := f.svc.Describe(context.Background(), f.userID, f.profileID, series.ID)
	assert.Error(t, err)
}
