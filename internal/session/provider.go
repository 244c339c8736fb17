// Package session resolves the caller's identity through the external
// identity collaborator and gates routes on it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/models"
)

// Provider validates the request's session cookie with the identity service.
// A nil user with a nil error means "no valid session": unauthenticated is
// a result, not a failure.
type Provider interface {
	GetSession(ctx context.Context, cookieHeader string) (*models.SessionUser, error)
}

type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.AuthBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.AuthTimeout,
		},
	}
}

func (p *HTTPProvider) GetSession(ctx context.Context, cookieHeader string) (*models.SessionUser, error) {
	if cookieHeader == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/api/auth/get-session", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Cookie", cookieHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	// The identity service answers `null` for anonymous callers.
	var payload struct {
		User *models.SessionUser `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return payload.User, nil
}
