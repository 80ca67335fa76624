package catalog

import (
	"context"
	"testing"
	"time"

	"flicks/internal/catalog/metadata"
	"flicks/internal/domain"
	"flicks/pkg/cache"
	"flicks/pkg/config"
	"flicks/pkg/errors"
	"flicks/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockRepository) Trending(ctx context.Context, limit int, kidsOnly bool) ([]*domain.Content, error) {
	args := m.Called(ctx, limit, kidsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Content), args.Error(1)
}

func (m *MockRepository) Structure(ctx context.Context, contentID uuid.UUID) (*domain.SeriesStructure, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeriesStructure), args.Error(1)
}

func (m *MockRepository) FindEpisode(ctx context.Context, contentID uuid.UUID, season, episode int) (*domain.Episode, error) {
	args := m.Called(ctx, contentID, season, episode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Episode), args.Error(1)
}

type MockMetadataClient struct {
	mock.Mock
}

func (m *MockMetadataClient) MovieDetail(ctx context.Context, id int64) (*metadata.Detail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metadata.Detail), args.Error(1)
}

func (m *MockMetadataClient) SeriesDetail(ctx context.Context, id int64) (*metadata.Detail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metadata.Detail), args.Error(1)
}

func newTestService(t *testing.T, repo Repository, client MetadataClient) *Service {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	svc, err := NewService(repo, client, rc, config.MetadataConfig{
		CacheTTL:  time.Hour,
		CacheSize: 16,
	}, logger.NewNop())
	require.NoError(t, err)
	return svc
}

func testMovie() *domain.Content {
	return &domain.Content{
		ID:         uuid.New(),
		MetadataID: 27205,
		Type:       domain.ContentMovie,
		Title:      "Inception",
	}
}

// --- Detail ---

func TestDetailFetchesAndCachesMetadata(t *testing.T) {
	repo := new(MockRepository)
	client := new(MockMetadataClient)
	svc := newTestService(t, repo, client)

	movie := testMovie()
	repo.On("FindByID", mock.Anything, movie.ID).Return(movie, nil)
	client.On("MovieDetail", mock.Anything, int64(27205)).
		Return(&metadata.Detail{ID: 27205, Title: "Inception"}, nil).Once()

	first, err := svc.Detail(context.Background(), movie.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Metadata)
	assert.Equal(t, "Inception", first.Metadata.Title)

	// Second lookup is served from cache; the client is called once.
	second, err := svc.Detail(context.Background(), movie.ID)
	require.NoError(t, err)
	require.NotNil(t, second.Metadata)
	client.AssertNumberOfCalls(t, "MovieDetail", 1)
}

func TestDetailDegradesWhenMetadataUnavailable(t *testing.T) {
	repo := new(MockRepository)
	client := new(MockMetadataClient)
	svc := newTestService(t, repo, client)

	movie := testMovie()
	repo.On("FindByID", mock.Anything, movie.ID).Return(movie, nil)
	client.On("MovieDetail", mock.Anything, int64(27205)).Return(nil, assert.AnError)

	detail, err := svc.Detail(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.Equal(t, movie, detail.Content)
	assert.Nil(t, detail.Metadata)
}

func TestDetailUsesSeriesEndpoint(t *testing.T) {
	repo := new(MockRepository)
	client := new(MockMetadataClient)
	svc := newTestService(t, repo, client)

	series := &domain.Content{ID: uuid.New(), MetadataID: 1396, Type: domain.ContentSeries}
	repo.On("FindByID", mock.Anything, series.ID).Return(series, nil)
	client.On("SeriesDetail", mock.Anything, int64(1396)).
		Return(&metadata.Detail{ID: 1396, Title: "Breaking Bad"}, nil)

	detail, err := svc.Detail(context.Background(), series.ID)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", detail.Metadata.Title)
	client.AssertNotCalled(t, "MovieDetail")
}

func TestDetailUnknownContent(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo, new(MockMetadataClient))

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, errors.ErrContentNotFound)

	_, err := svc.Detail(context.Background(), id)
	assert.Equal(t, errors.ErrContentNotFound, err)
}

// --- Trending ---

func TestTrendingClampsLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo, new(MockMetadataClient))

	repo.On("Trending", mock.Anything, 20, false).Return([]*domain.Content{}, nil)

	_, err := svc.Trending(context.Background(), 0, false)
	require.NoError(t, err)
	_, err = svc.Trending(context.Background(), 500, false)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Trending", 2)
}

func TestTrendingKidsOnly(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo, new(MockMetadataClient))

	kids := []*domain.Content{{ID: uuid.New(), IsKidsSafe: true}}
	repo.On("Trending", mock.Anything, 10, true).Return(kids, nil)

	items, err := svc.Trending(context.Background(), 10, true)
	require.NoError(t, err)
	assert.Equal(t, kids, items)
}
