package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/opubliq/leadgen/internal/model"
)

// FilterSummary reports one relevance-filter run.
type FilterSummary struct {
	Items     int
	Kept      int
	Defaulted int
}

// Filter scores each fetched item's relevance from title and source via the
// language model and keeps items meeting the configured threshold. A
// classifier error or out-of-range score substitutes the neutral default;
// the item survives scoring and is judged on the default. Calls are paced by
// a fixed inter-call delay.
func (p *Pipeline) Filter(ctx context.Context, date string) (*FilterSummary, error) {
	path := p.store.MappingPath(date)
	if err := p.store.RequireInput(path, "fetch"); err != nil {
		return nil, err
	}

	var articles []model.FetchedArticle
	if err := p.store.ReadCSV(path, &articles); err != nil {
		return nil, err
	}

	summary := &FilterSummary{Items: len(articles)}
	delay := time.Duration(p.cfg.Filter.DelayMs) * time.Millisecond
	limiter := rate.NewLimiter(rate.Every(delay), 1)
	if delay <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	kept := make([]model.FetchedArticle, 0, len(articles))
	for _, a := range articles {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		score, defaulted := p.scoreRelevance(ctx, a)
		if defaulted {
			summary.Defaulted++
		}
		if score >= p.cfg.Filter.Threshold {
			a.Relevance = score
			kept = append(kept, a)
		}
	}

	summary.Kept = len(kept)
	if err := p.store.WriteCSV(p.store.FilteredMappingPath(date), kept); err != nil {
		return nil, err
	}

	zap.L().Info("filter: complete",
		zap.String("date", date),
		zap.Int("items", summary.Items),
		zap.Int("kept", summary.Kept),
		zap.Int("defaulted", summary.Defaulted),
	)
	return summary, nil
}

// scoreRelevance returns the classifier score, or the neutral default when
// the call fails or the result is out of range.
func (p *Pipeline) scoreRelevance(ctx context.Context, a model.FetchedArticle) (score int, defaulted bool) {
	text, err := p.generate(ctx, "filter", fmt.Sprintf(relevancePrompt, a.Title, a.Source))
	if err != nil {
		zap.L().Warn("filter: classifier call failed",
			zap.String("title", a.Title),
			zap.Error(err),
		)
		return p.cfg.Filter.DefaultScore, true
	}

	score, err = strconv.Atoi(strings.TrimSpace(text))
	if err != nil || score < 1 || score > 5 {
		zap.L().Warn("filter: out-of-range classifier result",
			zap.String("title", a.Title),
			zap.String("result", text),
		)
		return p.cfg.Filter.DefaultScore, true
	}
	return score, false
}
