package models

import (
	"fmt"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type SortKey string

const (
	SortMostRecent  SortKey = "mostRecent"
	SortOldestFirst SortKey = "oldestFirst"
	SortMostViewed  SortKey = "mostViewed"
	SortLeastViewed SortKey = "leastViewed"
)

// Video is the catalog record for one uploaded recording. VideoID is the
// identifier the media host assigned when the asset was created; it is never
// generated locally.
type Video struct {
	VideoID      string     `json:"videoId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	VideoURL     string     `json:"videoUrl"`
	Visibility   Visibility `json:"visibility"`
	Duration     *int       `json:"duration,omitempty"`
	Views        int64      `json:"views"`
	Tags         string     `json:"tags,omitempty"`
	UserID       string     `json:"userId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// EmbedURL derives the playback URL from the embed base, library and video id.
func EmbedURL(embedBase, libraryID, videoID string) string {
	return fmt.Sprintf("%s/%s/%s", embedBase, libraryID, videoID)
}

// VideoWithUser pairs a video with its owner's identity projection.
// User is nil when the owning account no longer resolves.
type VideoWithUser struct {
	Video Video `json:"video"`
	User  *User `json:"user,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalVideos int `json:"totalVideos"`
	PageSize    int `json:"pageSize"`
}

type VideoPage struct {
	Videos     []VideoWithUser `json:"videos"`
	Pagination Pagination      `json:"pagination"`
}

// ProcessingStatus reports the media host's transcoding progress for a video.
// The host marks a fully transcoded asset with status 4.
type ProcessingStatus struct {
	VideoID          string `json:"videoId"`
	Status           int    `json:"status"`
	EncodingProgress int    `json:"encodingProgress"`
	IsProcessed      bool   `json:"isProcessed"`
}
