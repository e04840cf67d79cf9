// Package gnews provides a client for the Google News RSS search endpoint.
package gnews

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://news.google.com/rss/search"

const userAgent = "Mozilla/5.0 (compatible; OpubliqLeadBot/1.0)"

// Client issues parameterized search queries against the feed endpoint.
type Client interface {
	// Search fetches the raw feed document for a free-text query.
	Search(ctx context.Context, query string) ([]byte, error)
}

// Option configures the client.
type Option func(*restyClient)

// WithBaseURL overrides the default endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *restyClient) {
		c.baseURL = url
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *restyClient) {
		c.http.SetTimeout(d)
	}
}

type restyClient struct {
	baseURL  string
	language string
	region   string
	edition  string
	http     *resty.Client
}

// NewClient creates a feed client for the given locale parameters
// (hl/gl/ceid on the wire).
func NewClient(language, region, edition string, opts ...Option) Client {
	c := &restyClient{
		baseURL:  defaultBaseURL,
		language: language,
		region:   region,
		edition:  edition,
		http: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *restyClient) Search(ctx context.Context, query string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":   c.language,
			"gl":   c.region,
			"ceid": c.edition,
			"q":    query,
		}).
		Get(c.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: fetch feed")
	}
	if resp.IsError() {
		return nil, eris.Errorf("gnews: unexpected status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
