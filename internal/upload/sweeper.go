package upload

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/models"
)

// Sweeper reconciles orphaned remote assets: uploads that issued credentials
// but never reached a terminal state within the TTL get their host asset
// deleted and their saga record marked failed.
type Sweeper struct {
	pending  PendingStore
	host     MediaHost
	interval time.Duration
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewSweeper(pending PendingStore, host MediaHost, interval, ttl time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		pending:  pending,
		host:     host,
		interval: interval,
		ttl:      ttl,
		log:      log.With().Str("component", "sweeper").Logger(),
		now:      time.Now,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
				continue
			}
			if swept > 0 {
				s.log.Info().Int("swept", swept).Msg("reconciled orphaned uploads")
			}
		}
	}
}

// SweepOnce reconciles every stale non-terminal upload and returns how many
// rows it retired. A failed host delete leaves the row untouched so the next
// pass retries it.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.ttl)
	stale, err := s.pending.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, p := range stale {
		if err := s.host.DeleteVideo(ctx, p.VideoID); err != nil {
			s.log.Warn().Err(err).Str("video_id", p.VideoID).Msg("failed to delete orphaned asset")
			continue
		}
		if err := s.pending.UpdateState(ctx, p.VideoID, models.PendingFailed, s.now().UTC()); err != nil {
			s.log.Warn().Err(err).Str("video_id", p.VideoID).Msg("failed to retire pending upload")
			continue
		}
		swept++
	}
	return swept, nil
}
