package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opubliq/leadgen/internal/model"
)

// QualifySummary reports one qualification run.
type QualifySummary struct {
	Organizations int
	Dropped       int
	Leads         int
}

// qualifyResult pairs a verdict with the organization's stable input index.
type qualifyResult struct {
	index int
	lead  model.Lead
}

// QualifyLeads asks the qualification service for a verdict on each
// aggregated organization, bounded to its first mentions as context. An
// organization with no parsable verdict is dropped, never defaulted to
// qualified. Output keeps is_lead organizations only, ranked by descending
// score with ties in original organization order.
func (p *Pipeline) QualifyLeads(ctx context.Context, date string) (*QualifySummary, error) {
	path := p.store.OrganizationsPath(date)
	if err := p.store.RequireInput(path, "extract"); err != nil {
		return nil, err
	}

	var orgs model.OrganizationSet
	if err := p.store.ReadJSON(path, &orgs); err != nil {
		return nil, err
	}

	summary := &QualifySummary{Organizations: len(orgs.Organizations)}
	var (
		mu      sync.Mutex
		results []qualifyResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Qualify.Workers)
	for i, org := range orgs.Organizations {
		g.Go(func() error {
			verdict := p.qualifyOne(gCtx, org)

			mu.Lock()
			defer mu.Unlock()
			if verdict == nil {
				summary.Dropped++
				return nil
			}
			if !verdict.IsLead {
				return nil
			}
			results = append(results, qualifyResult{
				index: i,
				lead:  model.Lead{Organization: org, Qualification: *verdict},
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Rank by score; ties keep the organizations' original order, not
	// completion order.
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].lead.Qualification.Score > results[j].lead.Qualification.Score
	})

	out := model.LeadSet{
		Date:                  date,
		OrganizationsAnalyzed: len(orgs.Organizations),
		LeadsQualified:        len(results),
		Leads:                 make([]model.Lead, 0, len(results)),
	}
	for _, r := range results {
		out.Leads = append(out.Leads, r.lead)
	}
	summary.Leads = len(out.Leads)

	if err := p.store.WriteJSON(p.store.LeadsPath(date), out); err != nil {
		return nil, err
	}

	zap.L().Info("qualify: complete",
		zap.String("date", date),
		zap.Int("organizations", summary.Organizations),
		zap.Int("dropped", summary.Dropped),
		zap.Int("leads", summary.Leads),
	)
	return summary, nil
}

// qualifyOne returns the verdict for one organization, or nil when the call
// fails or the response has no parsable verdict.
func (p *Pipeline) qualifyOne(ctx context.Context, org model.Organization) *model.Qualification {
	prompt := fmt.Sprintf(qualificationPrompt,
		org.Name,
		org.Type,
		org.Mentions,
		buildQualificationContext(org, p.cfg.Qualify.MaxMentions),
	)

	raw, err := p.generate(ctx, "qualify", prompt)
	if err != nil {
		zap.L().Warn("qualify: service call failed",
			zap.String("organization", org.Name),
			zap.Error(err),
		)
		return nil
	}

	var verdict model.Qualification
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &verdict); err != nil {
		zap.L().Warn("qualify: unparsable verdict",
			zap.String("organization", org.Name),
			zap.Error(err),
		)
		return nil
	}
	return &verdict
}
