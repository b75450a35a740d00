package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"card-news/internal/resilience/retry"
)

// httpPublisher posts the event as JSON to a configured endpoint.
type httpPublisher struct {
	id     string
	cfg    HTTPConfig
	client *http.Client
}

func newHTTPPublisher(cfg Config) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, errors.New("http publisher configuration is missing")
	}
	return &httpPublisher{
		id:     cfg.ID,
		cfg:    *cfg.HTTP,
		client: &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second},
	}, nil
}

func (p *httpPublisher) ID() string { return p.id }

// Publish sends the event. Non-2xx responses become *retry.HTTPError so
// 5xx and 429 responses are retried by the fanout.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, p.cfg.Method, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", evt.Type)
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http publisher request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("http publisher %s: unexpected status %s", p.id, resp.Status),
		}
	}
	return nil
}
