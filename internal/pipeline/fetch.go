package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/internal/model"
	"github.com/opubliq/leadgen/internal/scrape"
	"github.com/opubliq/leadgen/pkg/render"
)

// FetchSummary reports one fetch run.
type FetchSummary struct {
	Items    int
	Fetched  int
	Excluded int
	Failed   int
}

// fetchJob is one item with its stable input index. The index, not a shared
// counter, names the stored content file.
type fetchJob struct {
	index int
	item  model.FeedItem
}

// fetchResult is one successfully fetched, allow-listed item.
type fetchResult struct {
	index   int
	article model.FetchedArticle
}

// Fetch resolves each feed item to stored page content. Origins that perform
// script-based redirection go through a rendering engine; everything else is
// a plain GET following redirects. The origin allow-list is applied to the
// final resolved URL; content from disallowed origins is discarded. Failures
// are isolated per item.
func (p *Pipeline) Fetch(ctx context.Context, date string) (*FetchSummary, error) {
	path := p.store.RawArticlesPath(date)
	if err := p.store.RequireInput(path, "parse"); err != nil {
		return nil, err
	}

	var items []model.FeedItem
	if err := p.store.ReadCSV(path, &items); err != nil {
		return nil, err
	}

	summary := &FetchSummary{Items: len(items)}
	timeout := time.Duration(p.cfg.Fetch.TimeoutSecs) * time.Second

	jobs := make(chan fetchJob)
	var (
		mu      sync.Mutex
		results []fetchResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < p.cfg.Fetch.Workers; w++ {
		g.Go(func() error {
			// Each worker owns a private rendering engine, created on
			// first use and released on every exit path.
			var engine render.Engine
			defer func() {
				if engine != nil {
					_ = engine.Close()
				}
			}()

			for job := range jobs {
				outcome, err := p.fetchOne(gCtx, date, job, &engine, timeout)
				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					zap.L().Warn("fetch: item failed",
						zap.Int("index", job.index),
						zap.String("url", job.item.URL),
						zap.Error(err),
					)
				case outcome == nil:
					summary.Excluded++
				default:
					summary.Fetched++
					results = append(results, *outcome)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	for i, item := range items {
		jobs <- fetchJob{index: i + 1, item: item}
	}
	close(jobs)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	mapping := make([]model.FetchedArticle, 0, len(results))
	for _, r := range results {
		mapping = append(mapping, r.article)
	}
	if err := p.store.WriteCSV(p.store.MappingPath(date), mapping); err != nil {
		return nil, err
	}

	zap.L().Info("fetch: complete",
		zap.String("date", date),
		zap.Int("items", summary.Items),
		zap.Int("fetched", summary.Fetched),
		zap.Int("excluded", summary.Excluded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// fetchOne resolves a single item. A nil result with nil error means the
// final origin failed the allow-list.
func (p *Pipeline) fetchOne(ctx context.Context, date string, job fetchJob, engine *render.Engine, timeout time.Duration) (*fetchResult, error) {
	itemCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var page *scrape.Page
	if p.needsRender(job.item.URL) {
		if *engine == nil {
			e, err := p.newEngine()
			if err != nil {
				return nil, err
			}
			*engine = e
		}
		rendered, err := (*engine).Render(itemCtx, job.item.URL)
		if err != nil {
			return nil, err
		}
		page = &scrape.Page{FinalURL: rendered.FinalURL, HTML: rendered.HTML}
	} else {
		var err error
		page, err = p.fetcher.Fetch(itemCtx, job.item.URL)
		if err != nil {
			return nil, err
		}
	}

	htmlFile := lake.HTMLFileName(job.index)
	htmlPath := filepath.Join(p.store.HTMLDir(date), htmlFile)
	if err := p.store.WriteFile(htmlPath, []byte(page.HTML)); err != nil {
		return nil, err
	}

	// The allow-list judges the final resolved origin, not the feed URL.
	if !p.allow.Allowed(page.FinalURL) {
		zap.L().Debug("fetch: origin excluded",
			zap.String("url", job.item.URL),
			zap.String("final_url", page.FinalURL),
		)
		if err := p.store.Remove(htmlPath); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &fetchResult{
		index: job.index,
		article: model.FetchedArticle{
			Signal:   job.item.Signal,
			Title:    job.item.Title,
			Source:   job.item.Source,
			URL:      job.item.URL,
			FinalURL: page.FinalURL,
			HTMLFile: htmlFile,
		},
	}, nil
}

// needsRender reports whether the URL's host is a configured
// script-redirecting origin.
func (p *Pipeline) needsRender(rawURL string) bool {
	host := scrape.Host(rawURL)
	for _, h := range p.cfg.Fetch.RenderHosts {
		if host == h {
			return true
		}
	}
	return false
}
