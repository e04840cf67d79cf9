// Package render provides a client for a headless-browser rendering service,
// used to follow script-based redirects that plain HTTP cannot resolve.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Result is a rendered page: the post-redirect URL and the settled page
// source.
type Result struct {
	FinalURL string `json:"url"`
	HTML     string `json:"html"`
}

// Engine loads URLs in a browser session. Instances are not safe for
// concurrent use; each worker owns one and must Close it on every exit path.
type Engine interface {
	Render(ctx context.Context, targetURL string) (*Result, error)
	Close() error
}

// Factory creates a private Engine per worker.
type Factory func() (Engine, error)

// Option configures an engine.
type Option func(*httpEngine)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *httpEngine) {
		e.http = hc
	}
}

// WithSettleDelay sets how long the browser waits after load before the
// final URL and page source are read.
func WithSettleDelay(d time.Duration) Option {
	return func(e *httpEngine) {
		e.settle = d
	}
}

type httpEngine struct {
	baseURL string
	apiKey  string
	settle  time.Duration
	http    *http.Client
}

// NewEngine creates an engine backed by a remote rendering service.
func NewEngine(baseURL, apiKey string, opts ...Option) Engine {
	e := &httpEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		settle:  3 * time.Second,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewFactory returns a Factory producing engines with the given settings.
func NewFactory(baseURL, apiKey string, opts ...Option) Factory {
	return func() (Engine, error) {
		if baseURL == "" {
			return nil, eris.New("render: base url not configured")
		}
		return NewEngine(baseURL, apiKey, opts...), nil
	}
}

type renderRequest struct {
	URL    string `json:"url"`
	WaitMs int64  `json:"waitMs"`
}

func (e *httpEngine) Render(ctx context.Context, targetURL string) (*Result, error) {
	body, err := json.Marshal(renderRequest{
		URL:    targetURL,
		WaitMs: e.settle.Milliseconds(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "render: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "render: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "render: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("render: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "render: unmarshal response")
	}
	if result.FinalURL == "" {
		result.FinalURL = targetURL
	}
	return &result, nil
}

// Close releases the engine's browser session resources.
func (e *httpEngine) Close() error {
	e.http.CloseIdleConnections()
	return nil
}
