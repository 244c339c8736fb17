package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingState tracks an upload through the orchestration sequence. A row in
// a non-terminal state past the reconciliation TTL marks an orphaned remote
// asset that the sweeper must delete.
type PendingState string

const (
	PendingCredentialsIssued    PendingState = "credentials_issued"
	PendingThumbnailTransferred PendingState = "thumbnail_transferred"
	PendingPersisted            PendingState = "persisted"
	PendingFailed               PendingState = "failed"
)

// Terminal reports whether the state ends the upload's lifecycle.
func (s PendingState) Terminal() bool {
	return s == PendingPersisted || s == PendingFailed
}

// PendingUpload is the local saga record created before any bytes reach the
// media host.
type PendingUpload struct {
	ID        string
	VideoID   string
	UserID    string
	State     PendingState
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPendingUpload(videoID, userID string) *PendingUpload {
	now := time.Now().UTC()
	return &PendingUpload{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		UserID:    userID,
		State:     PendingCredentialsIssued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VideoSlot is the credential set for pushing video bytes to the media host.
type VideoSlot struct {
	VideoID   string `json:"videoId"`
	UploadURL string `json:"uploadUrl"`
	AccessKey string `json:"accessKey"`
}

// ThumbnailSlot is the credential set for pushing a thumbnail to the storage
// zone, plus the CDN URL the object will resolve to once written.
type ThumbnailSlot struct {
	UploadURL string `json:"uploadUrl"`
	CDNURL    string `json:"cdnUrl"`
	AccessKey string `json:"accessKey"`
}
