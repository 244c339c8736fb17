// Package catalog serves access-filtered, searchable, paginated views over
// the video store, and owns the mutation paths that do not belong to the
// upload orchestration.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/bunny"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/database"
	"github.com/mpetrov/screencast/internal/metrics"
	"github.com/mpetrov/screencast/internal/models"
)

// VideoStore is the persistence surface the query service relies on.
type VideoStore interface {
	GetByID(ctx context.Context, videoID string) (*models.VideoWithUser, error)
	List(ctx context.Context, q database.ListQuery) ([]models.VideoWithUser, error)
	Count(ctx context.Context, q database.ListQuery) (int, error)
	IncrementViews(ctx context.Context, videoID string, now time.Time) (bool, error)
	SetVisibility(ctx context.Context, videoID string, visibility models.Visibility, now time.Time) (bool, error)
	Delete(ctx context.Context, videoID string) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// MediaHost is the slice of the media-host API the catalog consumes for
// deletes, transcripts and processing status.
type MediaHost interface {
	DeleteVideo(ctx context.Context, guid string) error
	DeleteStorageObject(ctx context.Context, path string) error
	FetchTranscript(ctx context.Context, guid string) (string, error)
	GetVideo(ctx context.Context, guid string) (*bunny.Video, error)
}

// Filters narrows and orders a listing request.
type Filters struct {
	Query    string
	Sort     models.SortKey
	Page     int
	PageSize int
}

// OwnerCatalog is one user's profile listing.
type OwnerCatalog struct {
	User   models.User            `json:"user"`
	Videos []models.VideoWithUser `json:"videos"`
	Count  int                    `json:"count"`
}

type Service struct {
	cfg    *config.Config
	videos VideoStore
	users  UserStore
	host   MediaHost
	cache  *PageCache
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(cfg *config.Config, videos VideoStore, users UserStore, host MediaHost, cache *PageCache, log zerolog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		videos: videos,
		users:  users,
		host:   host,
		cache:  cache,
		log:    log.With().Str("component", "catalog").Logger(),
		now:    time.Now,
	}
}

// Cache exposes the listing cache so the upload flow can invalidate it.
func (s *Service) Cache() *PageCache {
	return s.cache
}

// ListVideos returns one page of videos visible to callerID: public ones
// plus the caller's own private ones. Pages are 1-indexed; a page past the
// end yields an empty set, not an error.
func (s *Service) ListVideos(ctx context.Context, callerID string, f Filters) (*models.VideoPage, error) {
	f = s.clamp(f)

	key := fmt.Sprintf("list|%s|%s|%s|%d|%d", callerID, strings.ToLower(f.Query), f.Sort, f.Page, f.PageSize)
	if page, ok := s.cache.Get(key); ok {
		return page, nil
	}

	query := database.ListQuery{
		CallerID: callerID,
		Search:   f.Query,
		Sort:     f.Sort,
		Limit:    f.PageSize,
		Offset:   (f.Page - 1) * f.PageSize,
	}

	total, err := s.videos.Count(ctx, query)
	if err != nil {
		return nil, apperror.Store("failed to count videos", err)
	}
	records, err := s.videos.List(ctx, query)
	if err != nil {
		return nil, apperror.Store("failed to list videos", err)
	}
	if records == nil {
		records = []models.VideoWithUser{}
	}

	page := &models.VideoPage{
		Videos: records,
		Pagination: models.Pagination{
			CurrentPage: f.Page,
			TotalPages:  (total + f.PageSize - 1) / f.PageSize,
			TotalVideos: total,
			PageSize:    f.PageSize,
		},
	}
	s.cache.Add(key, page)
	return page, nil
}

// ListVideosByOwner returns ownerID's catalog. Callers other than the owner
// never see the owner's private videos, regardless of search or sort.
func (s *Service) ListVideosByOwner(ctx context.Context, ownerID, callerID string, f Filters) (*OwnerCatalog, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, apperror.Store("failed to load user", err)
	}
	if owner == nil {
		return nil, apperror.NotFound("user", ownerID)
	}

	records, err := s.videos.List(ctx, database.ListQuery{
		CallerID: callerID,
		OwnerID:  ownerID,
		Search:   f.Query,
		Sort:     f.Sort,
	})
	if err != nil {
		return nil, apperror.Store("failed to list videos", err)
	}
	if records == nil {
		records = []models.VideoWithUser{}
	}

	return &OwnerCatalog{User: *owner, Videos: records, Count: len(records)}, nil
}

// GetVideoByID looks up a single video joined with its owner. Visibility is
// not enforced on this path; the caller-facing layer treats hidden and
// missing identically.
func (s *Service) GetVideoByID(ctx context.Context, videoID string) (*models.VideoWithUser, error) {
	record, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, apperror.Store("failed to load video", err)
	}
	if record == nil {
		return nil, apperror.NotFound("video", videoID)
	}
	return record, nil
}

// GetTranscript returns the raw caption text for a video.
func (s *Service) GetTranscript(ctx context.Context, videoID string) (string, error) {
	text, err := s.host.FetchTranscript(ctx, videoID)
	if err != nil {
		return "", apperror.Upstream("failed to fetch transcript", err)
	}
	return text, nil
}

// GetProcessingStatus reports the host's transcoding progress for a video.
func (s *Service) GetProcessingStatus(ctx context.Context, videoID string) (*models.ProcessingStatus, error) {
	video, err := s.host.GetVideo(ctx, videoID)
	if err != nil {
		return nil, apperror.Upstream("failed to fetch processing status", err)
	}
	return &models.ProcessingStatus{
		VideoID:          videoID,
		Status:           video.Status,
		EncodingProgress: video.EncodeProgress,
		IsProcessed:      video.Status == bunny.StatusProcessed,
	}, nil
}

// IncrementViews bumps the view counter by exactly one. Not owner-gated and
// not deduplicated per viewing session.
func (s *Service) IncrementViews(ctx context.Context, videoID string) error {
	ok, err := s.videos.IncrementViews(ctx, videoID, s.now().UTC())
	if err != nil {
		return apperror.Store("failed to increment views", err)
	}
	if !ok {
		return apperror.NotFound("video", videoID)
	}
	metrics.ViewsRecordedTotal.Inc()
	s.cache.Purge()
	return nil
}

// SetVisibility flips the video's access flag. Authorization happens in the
// calling layer; the store operation itself is not owner-gated.
func (s *Service) SetVisibility(ctx context.Context, videoID string, visibility models.Visibility) error {
	if !visibility.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown visibility %q", visibility))
	}
	ok, err := s.videos.SetVisibility(ctx, videoID, visibility, s.now().UTC())
	if err != nil {
		return apperror.Store("failed to update visibility", err)
	}
	if !ok {
		return apperror.NotFound("video", videoID)
	}
	s.cache.Purge()
	return nil
}

// DeleteVideo removes the remote asset, then the thumbnail object, then the
// local row, in that order. A failed remote delete leaves the row as the
// signal that the video still exists.
func (s *Service) DeleteVideo(ctx context.Context, videoID, thumbnailURL string) error {
	if err := s.host.DeleteVideo(ctx, videoID); err != nil {
		return apperror.Upstream("failed to delete video asset", err)
	}

	if path := thumbnailObjectPath(thumbnailURL); path != "" {
		if err := s.host.DeleteStorageObject(ctx, path); err != nil {
			return apperror.Upstream("failed to delete thumbnail object", err)
		}
	}

	ok, err := s.videos.Delete(ctx, videoID)
	if err != nil {
		return apperror.Store("failed to delete video record", err)
	}
	if !ok {
		return apperror.NotFound("video", videoID)
	}

	s.cache.Purge()
	s.log.Info().Str("video_id", videoID).Msg("video deleted")
	return nil
}

func (s *Service) clamp(f Filters) Filters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = s.cfg.DefaultPageSize
	}
	if f.PageSize > s.cfg.MaxPageSize {
		f.PageSize = s.cfg.MaxPageSize
	}
	return f
}

// thumbnailObjectPath maps a CDN URL back to the storage-zone object path.
func thumbnailObjectPath(thumbnailURL string) string {
	_, after, found := strings.Cut(thumbnailURL, "thumbnails/")
	if !found || after == "" {
		return ""
	}
	return "thumbnails/" + after
}
