package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/config"
)

// Transferer streams file bytes to an issued upload URL. One PUT with
// replace semantics; no retries and no resumption. A failed transfer must
// be restarted from the credential stage because the URL/key pairing may be
// single-use.
type Transferer struct {
	httpClient *http.Client
}

func NewTransferer(cfg *config.Config) *Transferer {
	return &Transferer{
		httpClient: &http.Client{
			Timeout: cfg.HostTimeout,
		},
	}
}

func (t *Transferer) Upload(ctx context.Context, uploadURL, accessKey, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return apperror.Transfer("failed to build transfer request", err)
	}
	req.Header.Set("AccessKey", accessKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return apperror.Transfer("transfer request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperror.Transfer(fmt.Sprintf("transfer rejected with status %d", resp.StatusCode), nil)
	}
	return nil
}
