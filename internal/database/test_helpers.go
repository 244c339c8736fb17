package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.Config{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := NewDB(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func seedUser(t *testing.T, db *DB, id, name string) *models.User {
	t.Helper()

	user := &models.User{
		ID:        id,
		Name:      name,
		Image:     "https://cdn.example.com/avatars/" + id + ".png",
		Email:     id + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if err := NewUserRepository(db).Upsert(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
	return user
}

func testVideo(videoID, userID, title string, visibility models.Visibility) *models.Video {
	now := time.Now().UTC()
	return &models.Video{
		VideoID:      videoID,
		Title:        title,
		Description:  "recorded walkthrough",
		ThumbnailURL: "https://cdn.example.com/thumbnails/" + videoID + ".png",
		VideoURL:     models.EmbedURL("https://iframe.mediadelivery.net/embed", "101", videoID),
		Visibility:   visibility,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
