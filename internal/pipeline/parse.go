package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/internal/model"
)

// ParseSummary reports one parse run.
type ParseSummary struct {
	Items int
}

// Parse transforms the consolidated item document into the normalized
// feed-item record set. Structurally malformed input is an error; missing
// sub-fields degrade to the N/A sentinel.
func (p *Pipeline) Parse(ctx context.Context, date string) (*ParseSummary, error) {
	path := p.store.ItemsPath(date)
	if err := p.store.RequireInput(path, "collect"); err != nil {
		return nil, err
	}

	var doc lake.FeedDocument
	if err := p.store.ReadXML(path, &doc); err != nil {
		return nil, err
	}

	items := make([]model.FeedItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		item := model.FeedItem{
			Signal: orNA(it.Signal),
			Title:  orNA(it.Title),
			Source: orNA(it.Source),
			URL:    orNA(it.Link),
		}
		if pub, ok := lake.ParsePubDate(it.PubDate); ok {
			item.PublishedAt = &pub
		}
		items = append(items, item)
	}

	if err := p.store.WriteCSV(p.store.RawArticlesPath(date), items); err != nil {
		return nil, err
	}

	zap.L().Info("parse: complete",
		zap.String("date", date),
		zap.Int("items", len(items)),
	)
	return &ParseSummary{Items: len(items)}, nil
}

// orNA substitutes the sentinel for absent field values.
func orNA(s string) string {
	if s == "" {
		return model.NotAvailable
	}
	return s
}
