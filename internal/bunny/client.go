// Package bunny talks to the external media host: the stream API that owns
// video assets, the storage zone that holds thumbnail objects, and the
// public CDN that serves transcripts.
package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/metrics"
)

// Video is the stream API's representation of an asset. Status 4 means the
// asset is fully transcoded.
type Video struct {
	GUID           string `json:"guid"`
	Title          string `json:"title"`
	Status         int    `json:"status"`
	EncodeProgress int    `json:"encodeProgress"`
}

const StatusProcessed = 4

type Client struct {
	streamBaseURL     string
	storageBaseURL    string
	transcriptBaseURL string
	libraryID         string
	streamAccessKey   string
	storageAccessKey  string
	httpClient        *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		streamBaseURL:     cfg.StreamBaseURL,
		storageBaseURL:    cfg.StorageBaseURL,
		transcriptBaseURL: cfg.TranscriptBaseURL,
		libraryID:         cfg.LibraryID,
		streamAccessKey:   cfg.StreamAccessKey,
		storageAccessKey:  cfg.StorageAccessKey,
		httpClient: &http.Client{
			Timeout: cfg.HostTimeout,
		},
	}
}

func (c *Client) videoURL(guid string) string {
	return fmt.Sprintf("%s/%s/videos/%s", c.streamBaseURL, c.libraryID, guid)
}

// CreateVideo registers a placeholder asset and returns the host-assigned
// identifier. The title is overwritten later during metadata registration.
func (c *Client) CreateVideo(ctx context.Context, title string) (*Video, error) {
	url := fmt.Sprintf("%s/%s/videos", c.streamBaseURL, c.libraryID)
	body := map[string]string{"title": title, "collectionId": ""}

	var video Video
	if err := c.doStream(ctx, http.MethodPost, url, body, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// UpdateVideo registers the final title and description against an asset.
func (c *Client) UpdateVideo(ctx context.Context, guid, title, description string) error {
	body := map[string]string{"title": title, "description": description}
	return c.doStream(ctx, http.MethodPost, c.videoURL(guid), body, nil)
}

// GetVideo fetches the asset's transcoding status.
func (c *Client) GetVideo(ctx context.Context, guid string) (*Video, error) {
	var video Video
	if err := c.doStream(ctx, http.MethodGet, c.videoURL(guid), nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// DeleteVideo removes the asset and all of its renditions from the host.
func (c *Client) DeleteVideo(ctx context.Context, guid string) error {
	return c.doStream(ctx, http.MethodDelete, c.videoURL(guid), nil, nil)
}

func (c *Client) doStream(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("AccessKey", c.streamAccessKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordHostOperation("stream_"+method, "error")
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordHostOperation("stream_"+method, "error")
		return fmt.Errorf("stream API returned status %d", resp.StatusCode)
	}
	metrics.RecordHostOperation("stream_"+method, "success")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// DeleteStorageObject removes an object from the storage zone by its path
// relative to the zone root, e.g. "thumbnails/169...-guid-thumbnail".
func (c *Client) DeleteStorageObject(ctx context.Context, path string) error {
	url := fmt.Sprintf("%s/%s", c.storageBaseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("AccessKey", c.storageAccessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordHostOperation("storage_DELETE", "error")
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordHostOperation("storage_DELETE", "error")
		return fmt.Errorf("storage API returned status %d", resp.StatusCode)
	}
	metrics.RecordHostOperation("storage_DELETE", "success")
	return nil
}

// FetchTranscript returns the raw auto-generated caption text for a video.
// Served from the public CDN, no access key required.
func (c *Client) FetchTranscript(ctx context.Context, guid string) (string, error) {
	url := fmt.Sprintf("%s/%s/captions/en-auto.vtt", c.transcriptBaseURL, guid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript fetch returned status %d", resp.StatusCode)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	return string(text), nil
}
