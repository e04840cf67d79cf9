package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opubliq/leadgen/internal/config"
	"github.com/opubliq/leadgen/internal/lake"
	"github.com/opubliq/leadgen/internal/model"
	"github.com/opubliq/leadgen/pkg/anthropic"
	"github.com/opubliq/leadgen/pkg/gnews"
	"github.com/opubliq/leadgen/pkg/render"
)

const testDate = "2026-08-29"

// fakeFeed scripts Search by delegating to fn.
type fakeFeed struct {
	fn func(query string) ([]byte, error)
}

func (f *fakeFeed) Search(_ context.Context, query string) ([]byte, error) {
	return f.fn(query)
}

// fakeLLM scripts CreateMessage with a prompt-to-text function.
type fakeLLM struct {
	fn func(prompt string) (string, error)
}

func (f *fakeLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	text, err := f.fn(req.Messages[len(req.Messages)-1].Content)
	if err != nil {
		return nil, err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}, nil
}

// fakeEngine scripts Render and records Close calls.
type fakeEngine struct {
	fn     func(targetURL string) (*render.Result, error)
	closed *bool
}

func (f *fakeEngine) Render(_ context.Context, targetURL string) (*render.Result, error) {
	return f.fn(targetURL)
}

func (f *fakeEngine) Close() error {
	if f.closed != nil {
		*f.closed = true
	}
	return nil
}

func noEngine() (render.Engine, error) {
	return nil, fmt.Errorf("no rendering engine in this test")
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir: dir,
		Collect: config.CollectConfig{
			WindowDays: 7,
			Signals: []config.Signal{
				{Name: "signal_a", Query: "association Québec"},
				{Name: "signal_b", Query: "projet de loi Québec"},
			},
		},
		Fetch: config.FetchConfig{
			Workers:     2,
			TimeoutSecs: 5,
			AllowedTLDs: []string{".ca"},
		},
		Filter:    config.FilterConfig{Threshold: 4, DefaultScore: 3},
		Extract:   config.ExtractConfig{Workers: 2, MaxChars: 3000},
		Qualify:   config.QualifyConfig{Workers: 2, MaxMentions: 5},
		Anthropic: config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 1024},
	}
}

func newTestPipeline(cfg *config.Config, feed gnews.Client, llm anthropic.Client, factory render.Factory) (*Pipeline, *lake.Store) {
	store := lake.New(cfg.DataDir)
	return New(cfg, store, feed, llm, factory), store
}

// rssDoc renders a minimal feed document from items.
func rssDoc(items ...string) []byte {
	return []byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>test</title>` +
		strings.Join(items, "") + `</channel></rss>`)
}

func rssItem(title, link, source string, pub time.Time) string {
	return fmt.Sprintf(
		`<item><title>%s</title><link>%s</link><source url="%s">%s</source><pubDate>%s</pubDate></item>`,
		title, link, link, source, pub.Format(time.RFC1123Z),
	)
}

// TestPipelineEndToEnd runs every stage against scripted collaborators and a
// local article server.
func TestPipelineEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/articles/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><article>
			<h1>Titre</h1>
			<p>La Fédération des travailleurs du Québec dénonce le projet de loi 94 et demande son retrait immédiat devant la commission parlementaire.</p>
			<p>Le gouvernement du Québec maintient son intention d'adopter le texte avant la fin de la session, malgré les critiques répétées des organisations syndicales.</p>
		</article></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-24 * time.Hour)
	stale := now.Add(-8 * 24 * time.Hour)

	urlA := srv.URL + "/articles/a"
	urlB := srv.URL + "/articles/b"
	urlC := srv.URL + "/articles/c"

	feed := &fakeFeed{fn: func(query string) ([]byte, error) {
		assert.Contains(t, query, " when:7d")
		if strings.Contains(query, "association") {
			return rssDoc(
				rssItem("Article A", urlA, "Le Devoir", fresh),
				rssItem("Article B", urlB, "La Presse", fresh),
				rssItem("Article stale", urlC, "Le Soleil", stale),
			), nil
		}
		return rssDoc(
			rssItem("Article B again", urlB, "La Presse", fresh),
			rssItem("Article C", urlC, "Le Soleil", fresh),
		), nil
	}}

	extractionByTitle := map[string]string{
		"Article A": `{"summary": "La FTQ conteste le projet de loi 94.", "organizations": [
			{"name": "Fédération des travailleurs du Québec", "type": "syndicat", "action": "dénonce", "issue": "projet de loi 94", "quote": "La FTQ dénonce", "summary": "La FTQ demande le retrait du projet de loi."}
		]}`,
		"Article B": `{"summary": "Deux organisations réagissent.", "organizations": [
			{"name": "Fédération des travailleurs du Québec", "type": "syndicat", "action": "réclame", "issue": "conditions de travail", "quote": "La FTQ réclame", "summary": "La FTQ réclame des amendements."},
			{"name": "Ordre des infirmières", "type": "ordre professionnel", "action": "s'inquiète", "issue": "pénurie de personnel", "quote": "L'Ordre s'inquiète", "summary": "L'Ordre demande un plan d'action."}
		]}`,
	}

	llm := &fakeLLM{fn: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Rate how promising"):
			return "5", nil
		case strings.Contains(prompt, "ARTICLE TITLE:"):
			for title, resp := range extractionByTitle {
				if strings.Contains(prompt, "ARTICLE TITLE: "+title) {
					return resp, nil
				}
			}
			// Article C: unusable output on both parse passes.
			return "I could not find any JSON, here", nil
		case strings.Contains(prompt, "ORGANIZATION UNDER REVIEW"):
			if strings.Contains(prompt, "Fédération des travailleurs") {
				return `{"is_lead": true, "score": 4, "reason": "syndicat en conflit", "anticipated_need": "public affairs", "urgency": "high", "note": "n/a"}`, nil
			}
			return `{"is_lead": false, "score": 2, "reason": "hors cible", "anticipated_need": "none", "urgency": "low", "note": "n/a"}`, nil
		}
		return "", fmt.Errorf("unexpected prompt: %s", prompt)
	}}

	cfg := testConfig(t.TempDir())
	cfg.Fetch.AllowedDomains = []string{"127.0.0.1"}
	p, store := newTestPipeline(cfg, feed, llm, noEngine)
	p.now = func() time.Time { return now }

	ctx := context.Background()

	collectSum, err := p.Collect(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 5, collectSum.Fetched)
	assert.Equal(t, 1, collectSum.OutOfWindow)
	assert.Equal(t, 1, collectSum.Duplicates)
	assert.Equal(t, 3, collectSum.Kept)

	parseSum, err := p.Parse(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, parseSum.Items)

	fetchSum, err := p.Fetch(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, fetchSum.Fetched)
	assert.Equal(t, 0, fetchSum.Excluded)
	assert.Equal(t, 0, fetchSum.Failed)

	filterSum, err := p.Filter(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, filterSum.Kept)

	whSum, err := p.BuildWarehouse(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, whSum.Records)
	assert.Equal(t, 0, whSum.Empty)

	extractSum, err := p.ExtractOrganizations(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, extractSum.Articles)
	assert.Equal(t, 2, extractSum.WithMentions)
	assert.Equal(t, 1, extractSum.ParseFailures)
	assert.Equal(t, 2, extractSum.Organizations)
	assert.True(t, store.Exists(store.FailuresPath(testDate)))

	var orgs model.OrganizationSet
	require.NoError(t, store.ReadJSON(store.OrganizationsPath(testDate), &orgs))
	require.Len(t, orgs.Organizations, 2)
	assert.Equal(t, "Fédération des travailleurs du Québec", orgs.Organizations[0].Name)
	assert.Equal(t, 2, orgs.Organizations[0].Mentions)

	qualifySum, err := p.QualifyLeads(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 2, qualifySum.Organizations)
	assert.Equal(t, 0, qualifySum.Dropped)
	assert.Equal(t, 1, qualifySum.Leads)

	var leads model.LeadSet
	require.NoError(t, store.ReadJSON(store.LeadsPath(testDate), &leads))
	assert.Equal(t, testDate, leads.Date)
	assert.Equal(t, 2, leads.OrganizationsAnalyzed)
	require.Len(t, leads.Leads, 1)
	assert.Equal(t, "Fédération des travailleurs du Québec", leads.Leads[0].Organization.Name)
	assert.Equal(t, 4, leads.Leads[0].Qualification.Score)
}

func TestGenerateRequiresClient(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p, _ := newTestPipeline(cfg, &fakeFeed{}, nil, noEngine)

	_, err := p.generate(context.Background(), "filter", "prompt")
	require.Error(t, err)
}
