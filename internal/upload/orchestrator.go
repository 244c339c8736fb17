package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/metrics"
	"github.com/mpetrov/screencast/internal/models"
)

// VideoStore is the catalog insert the orchestration ends with.
type VideoStore interface {
	Insert(ctx context.Context, video *models.Video) error
}

// Limiter guards the metadata-registration step.
type Limiter interface {
	Allow(key string) bool
}

// Invalidator drops cached listing views after the catalog changes.
type Invalidator interface {
	Purge()
}

// FinalizeInput carries everything the orchestrator needs once the client
// has pushed the video bytes with its issued slot.
type FinalizeInput struct {
	VideoID     string
	Title       string
	Description string
	Visibility  models.Visibility
	Tags        string
	Duration    *int
	Thumbnail   io.Reader
}

// Orchestrator sequences the upload workflow: issued credentials, byte
// transfers, metadata registration and the final catalog insert. There is no
// rollback of earlier stages on failure: a mid-sequence abort leaves the
// remote asset orphaned for the sweeper, never a partial catalog row.
type Orchestrator struct {
	cfg      *config.Config
	issuer   *Issuer
	transfer *Transferer
	host     MediaHost
	videos   VideoStore
	pending  PendingStore
	limiter  Limiter
	cache    Invalidator
	log      zerolog.Logger
	now      func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	issuer *Issuer,
	transfer *Transferer,
	host MediaHost,
	videos VideoStore,
	pending PendingStore,
	limiter Limiter,
	cache Invalidator,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		issuer:   issuer,
		transfer: transfer,
		host:     host,
		videos:   videos,
		pending:  pending,
		limiter:  limiter,
		cache:    cache,
		log:      log.With().Str("component", "orchestrator").Logger(),
		now:      time.Now,
	}
}

// RequestVideoSlot starts a new upload for userID.
func (o *Orchestrator) RequestVideoSlot(ctx context.Context, userID string) (*models.VideoSlot, error) {
	slot, err := o.issuer.IssueVideoSlot(ctx, userID)
	if err != nil {
		return nil, apperror.Normalize(err, "issuing video slot")
	}
	return slot, nil
}

// RequestThumbnailSlot derives thumbnail credentials scoped to videoID.
func (o *Orchestrator) RequestThumbnailSlot(ctx context.Context, videoID string) (*models.ThumbnailSlot, error) {
	slot, err := o.issuer.IssueThumbnailSlot(videoID)
	if err != nil {
		return nil, apperror.Normalize(err, "issuing thumbnail slot")
	}
	return slot, nil
}

// Finalize completes the upload: transfers the thumbnail, registers the
// final metadata with the host and inserts the catalog row.
func (o *Orchestrator) Finalize(ctx context.Context, userID string, in FinalizeInput) (*models.Video, error) {
	video, err := o.finalize(ctx, userID, in)
	if err != nil {
		metrics.RecordUpload("failure")
		o.log.Error().Err(err).Str("video_id", in.VideoID).Str("user_id", userID).Msg("upload finalize failed")
		return nil, apperror.Normalize(err, "finalizing upload")
	}
	metrics.RecordUpload("success")
	o.log.Info().Str("video_id", video.VideoID).Str("user_id", userID).Msg("upload finalized")
	return video, nil
}

func (o *Orchestrator) finalize(ctx context.Context, userID string, in FinalizeInput) (*models.Video, error) {
	// Fail fast before any external effect.
	if err := validateInput(userID, in); err != nil {
		return nil, err
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}

	thumbnail, err := o.readThumbnail(in.Thumbnail)
	if err != nil {
		return nil, err
	}

	slot, err := o.issuer.IssueThumbnailSlot(in.VideoID)
	if err != nil {
		return nil, err
	}

	contentType := mimetype.Detect(thumbnail).String()
	if err := o.transfer.Upload(ctx, slot.UploadURL, slot.AccessKey, contentType, bytes.NewReader(thumbnail)); err != nil {
		return nil, err
	}
	if err := o.pending.UpdateState(ctx, in.VideoID, models.PendingThumbnailTransferred, o.now().UTC()); err != nil {
		return nil, apperror.Store("failed to advance pending upload", err)
	}

	// Quota applies to metadata registration; exhausting it fails the whole
	// orchestration with a distinct condition.
	if !o.limiter.Allow(userID) {
		return nil, apperror.RateLimited("upload quota exceeded, try again shortly")
	}

	if err := o.host.UpdateVideo(ctx, in.VideoID, in.Title, in.Description); err != nil {
		return nil, apperror.Upstream("failed to register video metadata", err)
	}

	now := o.now().UTC()
	video := &models.Video{
		VideoID:      in.VideoID,
		Title:        in.Title,
		Description:  in.Description,
		ThumbnailURL: slot.CDNURL,
		VideoURL:     models.EmbedURL(o.cfg.EmbedBaseURL, o.cfg.LibraryID, in.VideoID),
		Visibility:   in.Visibility,
		Duration:     in.Duration,
		Tags:         in.Tags,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.videos.Insert(ctx, video); err != nil {
		return nil, apperror.Store("failed to insert video record", err)
	}

	if err := o.pending.UpdateState(ctx, in.VideoID, models.PendingPersisted, o.now().UTC()); err != nil {
		// The catalog row exists; a stale pending row only costs the sweeper
		// one wasted delete attempt against an asset that is still referenced.
		o.log.Warn().Err(err).Str("video_id", in.VideoID).Msg("failed to mark pending upload persisted")
	}

	o.cache.Purge()
	return video, nil
}

func validateInput(userID string, in FinalizeInput) error {
	if userID == "" {
		return apperror.Unauthenticated()
	}
	if strings.TrimSpace(in.VideoID) == "" {
		return apperror.Validation("videoId is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return apperror.Validation("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperror.Validation("description is required")
	}
	if in.Thumbnail == nil {
		return apperror.Validation("thumbnail file is required")
	}
	if in.Visibility != "" && !in.Visibility.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown visibility %q", in.Visibility))
	}
	return nil
}

func (o *Orchestrator) readThumbnail(r io.Reader) ([]byte, error) {
	limit := o.cfg.MaxThumbnailBytes
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, apperror.Transfer("failed to read thumbnail", err)
	}
	if len(data) == 0 {
		return nil, apperror.Validation("thumbnail file is empty")
	}
	if int64(len(data)) > limit {
		return nil, apperror.Validation(fmt.Sprintf("thumbnail exceeds %d bytes", limit))
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return nil, apperror.Validation("thumbnail must be an image")
	}
	return data, nil
}
