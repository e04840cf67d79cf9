// Package scrape resolves article URLs to page content, either by direct
// HTTP or through a rendering engine for script-redirecting origins.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// maxBodyBytes caps how much page content is read per fetch.
const maxBodyBytes = 2 * 1024 * 1024

// Page is fetched page content with its post-redirect URL.
type Page struct {
	FinalURL string
	HTML     string
}

// Fetcher fetches a URL via net/http, following standard redirects and
// recording the final resolved URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with sensible defaults.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Fetch performs a GET and returns the page with its final URL.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; OpubliqLeadBot/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("scrape: status %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	return &Page{
		FinalURL: resp.Request.URL.String(),
		HTML:     string(body),
	}, nil
}

// Host extracts the lowercase hostname of a URL, with any www. prefix
// stripped. Empty on unparsable input.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host
}
