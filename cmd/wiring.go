package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/internal/pipeline"
	"github.com/opubliq/leadgen/pkg/anthropic"
	"github.com/opubliq/leadgen/pkg/gnews"
	"github.com/opubliq/leadgen/pkg/render"
)

// buildPipeline wires a Pipeline from configuration. Stages backed by the
// language model must pass needLLM so a missing credential aborts before any
// work starts.
func buildPipeline(needLLM bool) (*pipeline.Pipeline, error) {
	var llm anthropic.Client
	if needLLM {
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic api key not configured (set LEADGEN_ANTHROPIC_KEY or anthropic.key)")
		}
		llm = anthropic.NewClient(cfg.Anthropic.Key)
	}

	feed := gnews.NewClient(
		cfg.Feed.Language,
		cfg.Feed.Region,
		cfg.Feed.Edition,
		gnews.WithBaseURL(cfg.Feed.BaseURL),
		gnews.WithTimeout(time.Duration(cfg.Feed.TimeoutSecs)*time.Second),
	)

	engines := render.NewFactory(
		cfg.Render.BaseURL,
		cfg.Render.Key,
		render.WithSettleDelay(time.Duration(cfg.Render.SettleMs)*time.Millisecond),
	)

	return pipeline.New(cfg, lake.New(cfg.DataDir), feed, llm, engines), nil
}
