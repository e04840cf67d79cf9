package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/opubliq/leadgen/internal/extract"
	"github.com/opubliq/leadgen/internal/model"
)

// WarehouseSummary reports one warehouse build.
type WarehouseSummary struct {
	Records int
	Empty   int
}

// BuildWarehouse reduces each fetched article's stored content to main-body
// text. Extraction failure never drops a record: it is kept with empty text.
// The record's canonical URL is the post-redirect URL when available. Reads
// the relevance-filtered mapping when present, else the full mapping.
func (p *Pipeline) BuildWarehouse(ctx context.Context, date string) (*WarehouseSummary, error) {
	path := p.store.FilteredMappingPath(date)
	if !p.store.Exists(path) {
		path = p.store.MappingPath(date)
	}
	if err := p.store.RequireInput(path, "fetch"); err != nil {
		return nil, err
	}

	var articles []model.FetchedArticle
	if err := p.store.ReadCSV(path, &articles); err != nil {
		return nil, err
	}

	summary := &WarehouseSummary{Records: len(articles)}
	records := make([]model.WarehouseRecord, 0, len(articles))

	for _, a := range articles {
		var text string
		html, err := p.store.ReadFile(filepath.Join(p.store.HTMLDir(date), a.HTMLFile))
		if err != nil {
			zap.L().Warn("warehouse: stored content unreadable",
				zap.String("html_file", a.HTMLFile),
				zap.Error(err),
			)
		} else {
			text = extract.MainText(html)
		}
		if text == "" {
			summary.Empty++
		}

		url := a.FinalURL
		if url == "" {
			url = a.URL
		}
		records = append(records, model.WarehouseRecord{
			Signal: a.Signal,
			Title:  a.Title,
			Source: a.Source,
			URL:    url,
			Text:   text,
		})
	}

	if err := p.store.WriteCSV(p.store.WarehousePath(date), records); err != nil {
		return nil, err
	}

	zap.L().Info("warehouse: complete",
		zap.String("date", date),
		zap.Int("records", summary.Records),
		zap.Int("empty_text", summary.Empty),
	)
	return summary, nil
}
