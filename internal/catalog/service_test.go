package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/bunny"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/database"
	"github.com/mpetrov/screencast/internal/models"
)

type fakeVideoStore struct {
	records    map[string]*models.VideoWithUser
	listed     []models.VideoWithUser
	total      int
	listCalls  int
	countCalls int
	deleted    []string
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{records: make(map[string]*models.VideoWithUser)}
}

func (s *fakeVideoStore) GetByID(ctx context.Context, videoID string) (*models.VideoWithUser, error) {
	return s.records[videoID], nil
}

func (s *fakeVideoStore) List(ctx context.Context, q database.ListQuery) ([]models.VideoWithUser, error) {
	s.listCalls++
	return s.listed, nil
}

func (s *fakeVideoStore) Count(ctx context.Context, q database.ListQuery) (int, error) {
	s.countCalls++
	return s.total, nil
}

func (s *fakeVideoStore) IncrementViews(ctx context.Context, videoID string, now time.Time) (bool, error) {
	record, ok := s.records[videoID]
	if ok {
		record.Video.Views++
	}
	return ok, nil
}

func (s *fakeVideoStore) SetVisibility(ctx context.Context, videoID string, visibility models.Visibility, now time.Time) (bool, error) {
	record, ok := s.records[videoID]
	if ok {
		record.Video.Visibility = visibility
	}
	return ok, nil
}

func (s *fakeVideoStore) Delete(ctx context.Context, videoID string) (bool, error) {
	_, ok := s.records[videoID]
	if ok {
		delete(s.records, videoID)
		s.deleted = append(s.deleted, videoID)
	}
	return ok, nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

type fakeCatalogHost struct {
	video          *bunny.Video
	transcript     string
	transcriptErr  error
	deleteVideoErr error
	deletedAssets  []string
	deletedObjects []string
}

func (h *fakeCatalogHost) DeleteVideo(ctx context.Context, guid string) error {
	if h.deleteVideoErr != nil {
		return h.deleteVideoErr
	}
	h.deletedAssets = append(h.deletedAssets, guid)
	return nil
}

func (h *fakeCatalogHost) DeleteStorageObject(ctx context.Context, path string) error {
	h.deletedObjects = append(h.deletedObjects, path)
	return nil
}

func (h *fakeCatalogHost) FetchTranscript(ctx context.Context, guid string) (string, error) {
	return h.transcript, h.transcriptErr
}

func (h *fakeCatalogHost) GetVideo(ctx context.Context, guid string) (*bunny.Video, error) {
	return h.video, nil
}

func catalogRecord(videoID, userID string, visibility models.Visibility) *models.VideoWithUser {
	now := time.Now().UTC()
	return &models.VideoWithUser{
		Video: models.Video{
			VideoID:      videoID,
			Title:        "Quarterly Review",
			Description:  "recorded walkthrough",
			ThumbnailURL: "https://cdn.example.com/thumbnails/1757-" + videoID + "-thumbnail",
			VideoURL:     models.EmbedURL("https://iframe.mediadelivery.net/embed", "101", videoID),
			Visibility:   visibility,
			UserID:       userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func newTestService(t *testing.T, videos *fakeVideoStore, users *fakeUserStore, host *fakeCatalogHost) *Service {
	t.Helper()

	cache, err := NewPageCache(16)
	require.NoError(t, err)

	cfg := &config.Config{DefaultPageSize: 8, MaxPageSize: 50}
	return NewService(cfg, videos, users, host, cache, zerolog.Nop())
}

func TestService_ListVideos_Pagination(t *testing.T) {
	videos := newFakeVideoStore()
	videos.total = 17
	videos.listed = []models.VideoWithUser{*catalogRecord("vid-1", "user-1", models.VisibilityPublic)}
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})

	page, err := svc.ListVideos(context.Background(), "", Filters{Page: 2, PageSize: 8})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 17, page.Pagination.TotalVideos)
	assert.Equal(t, 8, page.Pagination.PageSize)
}

func TestService_ListVideos_ClampsFilters(t *testing.T) {
	videos := newFakeVideoStore()
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})

	page, err := svc.ListVideos(context.Background(), "", Filters{Page: -3, PageSize: 9000})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 50, page.Pagination.PageSize)
	assert.Empty(t, page.Videos)
}

func TestService_ListVideos_CachesPages(t *testing.T) {
	videos := newFakeVideoStore()
	videos.total = 1
	videos.listed = []models.VideoWithUser{*catalogRecord("vid-1", "user-1", models.VisibilityPublic)}
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})
	ctx := context.Background()

	_, err := svc.ListVideos(ctx, "user-1", Filters{})
	require.NoError(t, err)
	_, err = svc.ListVideos(ctx, "user-1", Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, videos.listCalls)

	// A different caller never shares a cache entry: the pages differ by
	// what private videos they may include.
	_, err = svc.ListVideos(ctx, "user-2", Filters{})
	require.NoError(t, err)
	assert.Equal(t, 2, videos.listCalls)
}

func TestService_ListVideosByOwner_UnknownUser(t *testing.T) {
	svc := newTestService(t, newFakeVideoStore(), &fakeUserStore{users: map[string]*models.User{}}, &fakeCatalogHost{})

	_, err := svc.ListVideosByOwner(context.Background(), "ghost", "", Filters{})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_ListVideosByOwner(t *testing.T) {
	videos := newFakeVideoStore()
	videos.listed = []models.VideoWithUser{*catalogRecord("vid-1", "user-1", models.VisibilityPublic)}
	users := &fakeUserStore{users: map[string]*models.User{
		"user-1": {ID: "user-1", Name: "Ada"},
	}}
	svc := newTestService(t, videos, users, &fakeCatalogHost{})

	result, err := svc.ListVideosByOwner(context.Background(), "user-1", "", Filters{})
	require.NoError(t, err)
	assert.Equal(t, "Ada", result.User.Name)
	assert.Equal(t, 1, result.Count)
}

func TestService_GetVideoByID(t *testing.T) {
	videos := newFakeVideoStore()
	videos.records["vid-1"] = catalogRecord("vid-1", "user-1", models.VisibilityPrivate)
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})

	record, err := svc.GetVideoByID(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "vid-1", record.Video.VideoID)

	_, err = svc.GetVideoByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_GetProcessingStatus(t *testing.T) {
	host := &fakeCatalogHost{video: &bunny.Video{GUID: "vid-1", Status: bunny.StatusProcessed, EncodeProgress: 100}}
	svc := newTestService(t, newFakeVideoStore(), &fakeUserStore{}, host)

	status, err := svc.GetProcessingStatus(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.True(t, status.IsProcessed)
	assert.Equal(t, 100, status.EncodingProgress)
}

func TestService_GetTranscript_UpstreamFailure(t *testing.T) {
	host := &fakeCatalogHost{transcriptErr: errors.New("404 from CDN")}
	svc := newTestService(t, newFakeVideoStore(), &fakeUserStore{}, host)

	_, err := svc.GetTranscript(context.Background(), "vid-1")
	require.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestService_IncrementViews(t *testing.T) {
	videos := newFakeVideoStore()
	videos.records["vid-1"] = catalogRecord("vid-1", "user-1", models.VisibilityPublic)
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})
	ctx := context.Background()

	// Prime the cache, then verify the mutation invalidates it.
	_, err := svc.ListVideos(ctx, "", Filters{})
	require.NoError(t, err)

	require.NoError(t, svc.IncrementViews(ctx, "vid-1"))
	assert.Equal(t, int64(1), videos.records["vid-1"].Video.Views)

	_, err = svc.ListVideos(ctx, "", Filters{})
	require.NoError(t, err)
	assert.Equal(t, 2, videos.listCalls)

	require.ErrorIs(t, svc.IncrementViews(ctx, "missing"), apperror.ErrNotFound)
}

func TestService_SetVisibility(t *testing.T) {
	videos := newFakeVideoStore()
	videos.records["vid-1"] = catalogRecord("vid-1", "user-1", models.VisibilityPublic)
	svc := newTestService(t, videos, &fakeUserStore{}, &fakeCatalogHost{})
	ctx := context.Background()

	require.NoError(t, svc.SetVisibility(ctx, "vid-1", models.VisibilityPrivate))
	assert.Equal(t, models.VisibilityPrivate, videos.records["vid-1"].Video.Visibility)

	require.ErrorIs(t, svc.SetVisibility(ctx, "vid-1", "unlisted"), apperror.ErrValidation)
	require.ErrorIs(t, svc.SetVisibility(ctx, "missing", models.VisibilityPublic), apperror.ErrNotFound)
}

func TestService_DeleteVideo(t *testing.T) {
	videos := newFakeVideoStore()
	record := catalogRecord("vid-1", "user-1", models.VisibilityPublic)
	videos.records["vid-1"] = record
	host := &fakeCatalogHost{}
	svc := newTestService(t, videos, &fakeUserStore{}, host)

	require.NoError(t, svc.DeleteVideo(context.Background(), "vid-1", record.Video.ThumbnailURL))

	assert.Equal(t, []string{"vid-1"}, host.deletedAssets)
	assert.Equal(t, []string{"thumbnails/1757-vid-1-thumbnail"}, host.deletedObjects)
	assert.Equal(t, []string{"vid-1"}, videos.deleted)
}

func TestService_DeleteVideo_HostFailureKeepsRow(t *testing.T) {
	videos := newFakeVideoStore()
	videos.records["vid-1"] = catalogRecord("vid-1", "user-1", models.VisibilityPublic)
	host := &fakeCatalogHost{deleteVideoErr: errors.New("host unavailable")}
	svc := newTestService(t, videos, &fakeUserStore{}, host)

	err := svc.DeleteVideo(context.Background(), "vid-1", "https://cdn.example.com/thumbnails/x")
	require.ErrorIs(t, err, apperror.ErrUpstream)

	// The row is the signal that the video still exists remotely.
	assert.Empty(t, videos.deleted)
	assert.NotNil(t, videos.records["vid-1"])
}

func TestThumbnailObjectPath(t *testing.T) {
	assert.Equal(t, "thumbnails/1757-vid-1-thumbnail",
		thumbnailObjectPath("https://cdn.example.com/thumbnails/1757-vid-1-thumbnail"))
	assert.Empty(t, thumbnailObjectPath("https://cdn.example.com/avatars/ada.png"))
	assert.Empty(t, thumbnailObjectPath(""))
}
