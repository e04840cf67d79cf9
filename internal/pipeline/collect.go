package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/pkg/gnews"
)

// CollectSummary reports one collection run.
type CollectSummary struct {
	Signals     int
	Failed      int
	Fetched     int
	OutOfWindow int
	Duplicates  int
	Kept        int
}

// Collect issues one feed query per configured signal, discards items whose
// publication timestamp is missing, unparsable, or outside the recency
// window, deduplicates the union by exact URL (first occurrence wins), and
// writes the consolidated item document. A failing signal is logged and
// contributes zero items; an empty result set is a valid outcome.
func (p *Pipeline) Collect(ctx context.Context, date string) (*CollectSummary, error) {
	now := p.now()
	cutoff := now.Add(-p.cfg.Collect.Window())
	windowQuery := fmt.Sprintf(" when:%dd", p.cfg.Collect.WindowDays)

	summary := &CollectSummary{Signals: len(p.cfg.Collect.Signals)}
	seen := make(map[string]struct{})
	doc := lake.FeedDocument{Date: date}

	for _, sig := range p.cfg.Collect.Signals {
		raw, err := p.feed.Search(ctx, sig.Query+windowQuery)
		if err != nil {
			zap.L().Warn("collect: signal fetch failed",
				zap.String("signal", sig.Name),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		if err := p.store.WriteFile(p.store.SignalFeedPath(date, sig.Name), raw); err != nil {
			return nil, err
		}

		feed, err := gnews.ParseFeed(raw)
		if err != nil {
			zap.L().Warn("collect: signal feed unparsable",
				zap.String("signal", sig.Name),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		for _, item := range feed.Channel.Items {
			summary.Fetched++

			pub, ok := item.PublishedAt()
			if !ok || pub.Before(cutoff) || pub.After(now) {
				summary.OutOfWindow++
				continue
			}
			if _, dup := seen[item.Link]; dup {
				summary.Duplicates++
				continue
			}
			seen[item.Link] = struct{}{}

			doc.Items = append(doc.Items, lake.FeedItem{
				Signal:  sig.Name,
				Title:   item.Title,
				Source:  item.Source,
				Link:    item.Link,
				PubDate: lake.FormatPubDate(pub),
			})
		}
	}

	summary.Kept = len(doc.Items)
	if err := p.store.WriteXML(p.store.ItemsPath(date), doc); err != nil {
		return nil, err
	}

	zap.L().Info("collect: complete",
		zap.String("date", date),
		zap.Int("signals", summary.Signals),
		zap.Int("failed_signals", summary.Failed),
		zap.Int("fetched", summary.Fetched),
		zap.Int("out_of_window", summary.OutOfWindow),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("kept", summary.Kept),
	)
	return summary, nil
}
