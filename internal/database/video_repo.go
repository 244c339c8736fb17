package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mpetrov/screencast/internal/models"
)

// ListQuery is the shared filter predicate for listing and counting videos.
// CallerID widens visibility to the caller's own private videos; OwnerID
// scopes the result to a single owner's catalog.
type ListQuery struct {
	CallerID string
	OwnerID  string
	Search   string
	Sort     models.SortKey
	Limit    int
	Offset   int
}

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoWithUserColumns = `
	v.video_id, v.title, v.description, v.thumbnail_url, v.video_url,
	v.visibility, v.duration, v.views, v.tags, v.user_id, v.created_at, v.updated_at,
	u.id, u.name, u.image, u.email, u.created_at`

func (r *VideoRepository) Insert(ctx context.Context, video *models.Video) error {
	query := r.db.rebind(`
		INSERT INTO videos (video_id, title, description, thumbnail_url, video_url,
			visibility, duration, views, tags, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	var duration sql.NullInt64
	if video.Duration != nil {
		duration = sql.NullInt64{Int64: int64(*video.Duration), Valid: true}
	}

	_, err := r.db.conn.ExecContext(ctx, query,
		video.VideoID, video.Title, video.Description, video.ThumbnailURL, video.VideoURL,
		string(video.Visibility), duration, video.Views, video.Tags, video.UserID,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

// GetByID returns the video joined with its owner, or (nil, nil) when no row
// exists. Absence is a result here, not an error.
func (r *VideoRepository) GetByID(ctx context.Context, videoID string) (*models.VideoWithUser, error) {
	query := r.db.rebind(`
		SELECT ` + videoWithUserColumns + `
		FROM videos v
		LEFT JOIN users u ON v.user_id = u.id
		WHERE v.video_id = ?`)

	row := r.db.conn.QueryRowContext(ctx, query, videoID)
	record, err := scanVideoWithUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return record, nil
}

func (r *VideoRepository) List(ctx context.Context, q ListQuery) ([]models.VideoWithUser, error) {
	where, args := buildFilter(q)

	query := `
		SELECT ` + videoWithUserColumns + `
		FROM videos v
		LEFT JOIN users u ON v.user_id = u.id` + where + `
		ORDER BY ` + orderClause(q.Sort)
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var records []models.VideoWithUser
	for rows.Next() {
		record, err := scanVideoWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read video rows: %w", err)
	}
	return records, nil
}

// Count runs the same filter predicate as List without pagination.
func (r *VideoRepository) Count(ctx context.Context, q ListQuery) (int, error) {
	where, args := buildFilter(q)

	var total int
	query := r.db.rebind("SELECT COUNT(*) FROM videos v" + where)
	if err := r.db.conn.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return total, nil
}

// IncrementViews bumps the counter in a single server-side statement so
// concurrent viewers never lose updates. Returns false when no row matched.
func (r *VideoRepository) IncrementViews(ctx context.Context, videoID string, now time.Time) (bool, error) {
	query := r.db.rebind(`UPDATE videos SET views = views + 1, updated_at = ? WHERE video_id = ?`)

	result, err := r.db.conn.ExecContext(ctx, query, now, videoID)
	if err != nil {
		return false, fmt.Errorf("failed to increment views: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *VideoRepository) SetVisibility(ctx context.Context, videoID string, visibility models.Visibility, now time.Time) (bool, error) {
	query := r.db.rebind(`UPDATE videos SET visibility = ?, updated_at = ? WHERE video_id = ?`)

	result, err := r.db.conn.ExecContext(ctx, query, string(visibility), now, videoID)
	if err != nil {
		return false, fmt.Errorf("failed to update visibility: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *VideoRepository) Delete(ctx context.Context, videoID string) (bool, error) {
	query := r.db.rebind(`DELETE FROM videos WHERE video_id = ?`)

	result, err := r.db.conn.ExecContext(ctx, query, videoID)
	if err != nil {
		return false, fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func buildFilter(q ListQuery) (string, []any) {
	var clauses []string
	var args []any

	if q.OwnerID != "" {
		clauses = append(clauses, "v.user_id = ?")
		args = append(args, q.OwnerID)
		if q.CallerID != q.OwnerID {
			clauses = append(clauses, "v.visibility = ?")
			args = append(args, string(models.VisibilityPublic))
		}
	} else if q.CallerID != "" {
		clauses = append(clauses, "(v.visibility = ? OR v.user_id = ?)")
		args = append(args, string(models.VisibilityPublic), q.CallerID)
	} else {
		clauses = append(clauses, "v.visibility = ?")
		args = append(args, string(models.VisibilityPublic))
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		clauses = append(clauses, "LOWER(v.title) LIKE LOWER(?)")
		args = append(args, "%"+search+"%")
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(sort models.SortKey) string {
	switch sort {
	case models.SortOldestFirst:
		return "v.created_at ASC"
	case models.SortMostViewed:
		return "v.views DESC"
	case models.SortLeastViewed:
		return "v.views ASC"
	default:
		return "v.created_at DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideoWithUser(row rowScanner) (*models.VideoWithUser, error) {
	var (
		record    models.VideoWithUser
		duration  sql.NullInt64
		userID    sql.NullString
		userName  sql.NullString
		userImage sql.NullString
		userEmail sql.NullString
		userSince sql.NullTime
	)

	err := row.Scan(
		&record.Video.VideoID, &record.Video.Title, &record.Video.Description,
		&record.Video.ThumbnailURL, &record.Video.VideoURL, &record.Video.Visibility,
		&duration, &record.Video.Views, &record.Video.Tags, &record.Video.UserID,
		&record.Video.CreatedAt, &record.Video.UpdatedAt,
		&userID, &userName, &userImage, &userEmail, &userSince)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		d := int(duration.Int64)
		record.Video.Duration = &d
	}
	if userID.Valid {
		record.User = &models.User{
			ID:        userID.String,
			Name:      userName.String,
			Image:     userImage.String,
			Email:     userEmail.String,
			CreatedAt: userSince.Time,
		}
	}
	return &record, nil
}
