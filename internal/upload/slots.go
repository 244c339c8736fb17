package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/bunny"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/models"
)

// MediaHost is the slice of the media-host API the upload flow consumes.
type MediaHost interface {
	CreateVideo(ctx context.Context, title string) (*bunny.Video, error)
	UpdateVideo(ctx context.Context, guid, title, description string) error
	DeleteVideo(ctx context.Context, guid string) error
}

// PendingStore persists the saga record for in-flight uploads.
type PendingStore interface {
	Insert(ctx context.Context, p *models.PendingUpload) error
	GetByVideoID(ctx context.Context, videoID string) (*models.PendingUpload, error)
	UpdateState(ctx context.Context, videoID string, state models.PendingState, now time.Time) error
	ListStale(ctx context.Context, cutoff time.Time) ([]models.PendingUpload, error)
}

// placeholderTitle is registered at asset creation and overwritten when the
// upload is finalized.
const placeholderTitle = "Temp Title"

// Issuer hands out scoped credentials for pushing bytes to the media host.
// It keeps no state of its own beyond the pending-upload saga record.
type Issuer struct {
	cfg     *config.Config
	host    MediaHost
	pending PendingStore
	log     zerolog.Logger
	now     func() time.Time
}

func NewIssuer(cfg *config.Config, host MediaHost, pending PendingStore, log zerolog.Logger) *Issuer {
	return &Issuer{
		cfg:     cfg,
		host:    host,
		pending: pending,
		log:     log.With().Str("component", "issuer").Logger(),
		now:     time.Now,
	}
}

// IssueVideoSlot creates a placeholder asset at the host and returns the
// upload credentials. A pending-upload row is recorded before returning so
// the sweeper can reconcile assets that never finish.
func (i *Issuer) IssueVideoSlot(ctx context.Context, userID string) (*models.VideoSlot, error) {
	if i.cfg.StreamAccessKey == "" {
		return nil, apperror.Upstream("stream access key is not configured", nil)
	}

	video, err := i.host.CreateVideo(ctx, placeholderTitle)
	if err != nil {
		return nil, apperror.Upstream("failed to create video asset", err)
	}
	if video.GUID == "" {
		return nil, apperror.Upstream("media host returned no video identifier", nil)
	}

	if err := i.pending.Insert(ctx, models.NewPendingUpload(video.GUID, userID)); err != nil {
		return nil, apperror.Store("failed to record pending upload", err)
	}

	i.log.Info().Str("video_id", video.GUID).Str("user_id", userID).Msg("issued video slot")

	return &models.VideoSlot{
		VideoID:   video.GUID,
		UploadURL: fmt.Sprintf("%s/%s/videos/%s", i.cfg.StreamBaseURL, i.cfg.LibraryID, video.GUID),
		AccessKey: i.cfg.StreamAccessKey,
	}, nil
}

// IssueThumbnailSlot derives a storage location for the video's thumbnail.
// The timestamp+videoID composite key is collision-resistant enough for this
// workload; no separate uniqueness check is made.
func (i *Issuer) IssueThumbnailSlot(videoID string) (*models.ThumbnailSlot, error) {
	if videoID == "" {
		return nil, apperror.Validation("videoId is required")
	}
	if i.cfg.StorageAccessKey == "" {
		return nil, apperror.Upstream("storage access key is not configured", nil)
	}

	key := fmt.Sprintf("thumbnails/%d-%s-thumbnail", i.now().UnixMilli(), videoID)

	return &models.ThumbnailSlot{
		UploadURL: fmt.Sprintf("%s/%s", i.cfg.StorageBaseURL, key),
		CDNURL:    fmt.Sprintf("%s/%s", i.cfg.CDNBaseURL, key),
		AccessKey: i.cfg.StorageAccessKey,
	}, nil
}
