package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SocialPoster publishes a short public announcement.
type SocialPoster interface {
	Post(ctx context.Context, text string) error
}

var errMissingBearer = errors.New("social poster: missing bearer token")

// HTTPPoster posts {"text": ...} as JSON with a bearer token, the shape the
// Twitter v2 tweets endpoint accepts.
type HTTPPoster struct {
	endpoint string
	token    string
	client   *http.Client
}

var _ SocialPoster = (*HTTPPoster)(nil)

func NewHTTPPoster(endpoint, token string, timeout time.Duration) *HTTPPoster {
	return &HTTPPoster{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPoster) Post(ctx context.Context, text string) error {
	if p.token == "" {
		return errMissingBearer
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("social post failed: %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}
	return nil
}
