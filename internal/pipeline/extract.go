package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opubliq/leadgen/internal/model"
)

// ExtractSummary reports one organization-extraction run.
type ExtractSummary struct {
	Articles      int
	WithMentions  int
	ParseFailures int
	Organizations int
}

// extractionResult pairs a per-article extraction with its stable input
// index so aggregation is independent of worker completion order.
type extractionResult struct {
	index      int
	extraction model.Extraction
}

// extractionResponse is the service's documented response schema.
type extractionResponse struct {
	Summary       string                      `json:"summary"`
	Organizations []model.OrganizationMention `json:"organizations"`
}

// ExtractOrganizations calls the structured-extraction service for each
// warehouse record, persists the per-article artifacts, and folds all
// mentions into the aggregated organization set ranked by mention count.
// An unparsable response degrades the article to zero mentions and lands in
// the failures side channel; it never aborts the run.
func (p *Pipeline) ExtractOrganizations(ctx context.Context, date string) (*ExtractSummary, error) {
	path := p.store.WarehousePath(date)
	if err := p.store.RequireInput(path, "warehouse"); err != nil {
		return nil, err
	}

	var records []model.WarehouseRecord
	if err := p.store.ReadCSV(path, &records); err != nil {
		return nil, err
	}

	summary := &ExtractSummary{Articles: len(records)}
	var (
		mu      sync.Mutex
		results []extractionResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Extract.Workers)
	for i, rec := range records {
		g.Go(func() error {
			extraction, parseFailed := p.extractOne(gCtx, date, i+1, rec)

			mu.Lock()
			defer mu.Unlock()
			if parseFailed {
				summary.ParseFailures++
			}
			if len(extraction.Organizations) > 0 {
				summary.WithMentions++
			}
			results = append(results, extractionResult{index: i + 1, extraction: extraction})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable aggregation order regardless of completion order.
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	extractions := make([]model.Extraction, 0, len(results))
	for _, r := range results {
		if err := p.store.WriteJSON(p.store.ExtractionPath(date, r.index), r.extraction); err != nil {
			return nil, err
		}
		extractions = append(extractions, r.extraction)
	}

	orgs := aggregateOrganizations(extractions)
	summary.Organizations = len(orgs.Organizations)
	if err := p.store.WriteJSON(p.store.OrganizationsPath(date), orgs); err != nil {
		return nil, err
	}

	summaries := model.SummarySet{Articles: make([]model.ArticleSummary, 0, len(extractions))}
	for _, e := range extractions {
		summaries.Articles = append(summaries.Articles, e.Article)
	}
	if err := p.store.WriteJSON(p.store.SummariesPath(date), summaries); err != nil {
		return nil, err
	}

	zap.L().Info("extract: complete",
		zap.String("date", date),
		zap.Int("articles", summary.Articles),
		zap.Int("with_mentions", summary.WithMentions),
		zap.Int("parse_failures", summary.ParseFailures),
		zap.Int("organizations", summary.Organizations),
	)
	return summary, nil
}

// extractOne processes one warehouse record. Any failure degrades to an
// empty extraction for the article.
func (p *Pipeline) extractOne(ctx context.Context, date string, index int, rec model.WarehouseRecord) (model.Extraction, bool) {
	article := model.ArticleSummary{
		Title:  rec.Title,
		Source: rec.Source,
		URL:    rec.URL,
		Signal: rec.Signal,
	}

	text := rec.Text
	if len(text) > p.cfg.Extract.MaxChars {
		text = text[:p.cfg.Extract.MaxChars]
	}

	raw, err := p.generate(ctx, "extract", fmt.Sprintf(extractionPrompt, rec.Title, text))
	if err != nil {
		zap.L().Warn("extract: service call failed",
			zap.Int("index", index),
			zap.String("title", rec.Title),
			zap.Error(err),
		)
		return model.Extraction{Article: article}, false
	}

	var resp extractionResponse
	if err := parseLenient(raw, &resp); err != nil {
		zap.L().Warn("extract: unparsable response",
			zap.Int("index", index),
			zap.String("title", rec.Title),
			zap.Error(err),
		)
		line := fmt.Sprintf("=== article %04d: %s ===\n%s", index, rec.Title, raw)
		if err := p.store.AppendLine(p.store.FailuresPath(date), line); err != nil {
			zap.L().Warn("extract: failures log write failed", zap.Error(err))
		}
		return model.Extraction{Article: article}, true
	}

	article.Summary = resp.Summary
	return model.Extraction{
		Article:       article,
		Organizations: resp.Organizations,
	}, false
}

// aggregateOrganizations folds all mentions by exact organization name.
// Issues, signals, and types are first-seen-ordered sets; a non-unanimous
// type set becomes a comma-joined label. Output is ranked by descending
// mention count with ties keeping first-appearance order.
func aggregateOrganizations(extractions []model.Extraction) model.OrganizationSet {
	type orgAccum struct {
		articles []model.ArticleMention
		types    []string
		issues   []string
		signals  []string
	}

	var order []string
	accums := make(map[string]*orgAccum)

	for _, e := range extractions {
		for _, m := range e.Organizations {
			acc, ok := accums[m.Name]
			if !ok {
				acc = &orgAccum{}
				accums[m.Name] = acc
				order = append(order, m.Name)
			}
			acc.articles = append(acc.articles, model.ArticleMention{
				Title:   e.Article.Title,
				Source:  e.Article.Source,
				URL:     e.Article.URL,
				Signal:  e.Article.Signal,
				Action:  m.Action,
				Issue:   m.Issue,
				Quote:   m.Quote,
				Summary: m.Summary,
			})
			acc.types = appendUnique(acc.types, m.Type)
			acc.issues = appendUnique(acc.issues, m.Issue)
			acc.signals = appendUnique(acc.signals, e.Article.Signal)
		}
	}

	set := model.OrganizationSet{Organizations: make([]model.Organization, 0, len(order))}
	for _, name := range order {
		acc := accums[name]
		set.Organizations = append(set.Organizations, model.Organization{
			Name:     name,
			Type:     joinTypes(acc.types),
			Mentions: len(acc.articles),
			Articles: acc.articles,
			Issues:   acc.issues,
			Signals:  acc.signals,
		})
	}

	sort.SliceStable(set.Organizations, func(i, j int) bool {
		return set.Organizations[i].Mentions > set.Organizations[j].Mentions
	})
	return set
}

// appendUnique appends s when not already present, preserving order.
func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// joinTypes renders the aggregate type label.
func joinTypes(types []string) string {
	switch len(types) {
	case 0:
		return ""
	case 1:
		return types[0]
	default:
		out := types[0]
		for _, t := range types[1:] {
			out += ", " + t
		}
		return out
	}
}
