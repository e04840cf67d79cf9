// Package pipeline implements the lead-generation stages: feed collection,
// parsing, content fetch, relevance filtering, warehouse build, organization
// extraction, and lead qualification. Each stage reads its predecessor's
// date-partitioned artifact and writes its own; stages never abort a batch
// for a single item's failure.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/opubliq/leadgen/internal/config"
	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/internal/scrape"
	"github.com/opubliq/leadgen/pkg/anthropic"
	"github.com/opubliq/leadgen/pkg/gnews"
	"github.com/opubliq/leadgen/pkg/render"
)

// Pipeline holds the stage dependencies. LLM-backed stages require a
// non-nil Anthropic client; the fetch stage requires the renderer factory
// only when a render-host URL is encountered.
type Pipeline struct {
	cfg       *config.Config
	store     *lake.Store
	feed      gnews.Client
	llm       anthropic.Client
	newEngine render.Factory
	fetcher   *scrape.Fetcher
	allow     *scrape.Allowlist

	// now is injectable for date-window tests.
	now func() time.Time
}

// New creates a Pipeline from configuration and collaborators.
func New(cfg *config.Config, store *lake.Store, feed gnews.Client, llm anthropic.Client, newEngine render.Factory) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		feed:      feed,
		llm:       llm,
		newEngine: newEngine,
		fetcher:   scrape.NewFetcher(),
		allow:     scrape.NewAllowlist(cfg.Fetch.AllowedDomains, cfg.Fetch.AllowedTLDs),
		now:       time.Now,
	}
}

// generate sends one prompt to the language model and returns the response
// text, logging token cost against the stage name.
func (p *Pipeline) generate(ctx context.Context, stage, prompt string) (string, error) {
	if p.llm == nil {
		return "", eris.New("pipeline: language model client not configured")
	}
	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.Model,
		MaxTokens: p.cfg.Anthropic.MaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, stage)
	return resp.Text(), nil
}
