package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mpetrov/screencast/internal/models"
)

// PendingUploadRepository persists the saga record created before any bytes
// reach the media host. The reconciliation sweeper reads stale rows from it.
type PendingUploadRepository struct {
	db *DB
}

func NewPendingUploadRepository(db *DB) *PendingUploadRepository {
	return &PendingUploadRepository{db: db}
}

func (r *PendingUploadRepository) Insert(ctx context.Context, p *models.PendingUpload) error {
	query := r.db.rebind(`
		INSERT INTO pending_uploads (id, video_id, user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.ExecContext(ctx, query,
		p.ID, p.VideoID, p.UserID, string(p.State), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending upload: %w", err)
	}
	return nil
}

func (r *PendingUploadRepository) GetByVideoID(ctx context.Context, videoID string) (*models.PendingUpload, error) {
	query := r.db.rebind(`
		SELECT id, video_id, user_id, state, created_at, updated_at
		FROM pending_uploads WHERE video_id = ?`)

	var p models.PendingUpload
	err := r.db.conn.QueryRowContext(ctx, query, videoID).Scan(
		&p.ID, &p.VideoID, &p.UserID, &p.State, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending upload: %w", err)
	}
	return &p, nil
}

func (r *PendingUploadRepository) UpdateState(ctx context.Context, videoID string, state models.PendingState, now time.Time) error {
	query := r.db.rebind(`UPDATE pending_uploads SET state = ?, updated_at = ? WHERE video_id = ?`)

	_, err := r.db.conn.ExecContext(ctx, query, string(state), now, videoID)
	if err != nil {
		return fmt.Errorf("failed to update pending upload state: %w", err)
	}
	return nil
}

// ListStale returns non-terminal uploads last touched before the cutoff.
func (r *PendingUploadRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.PendingUpload, error) {
	query := r.db.rebind(`
		SELECT id, video_id, user_id, state, created_at, updated_at
		FROM pending_uploads
		WHERE state NOT IN (?, ?) AND updated_at < ?
		ORDER BY updated_at ASC`)

	rows, err := r.db.conn.QueryContext(ctx, query,
		string(models.PendingPersisted), string(models.PendingFailed), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale uploads: %w", err)
	}
	defer rows.Close()

	var stale []models.PendingUpload
	for rows.Next() {
		var p models.PendingUpload
		if err := rows.Scan(&p.ID, &p.VideoID, &p.UserID, &p.State, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending upload: %w", err)
		}
		stale = append(stale, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending uploads: %w", err)
	}
	return stale, nil
}
