package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opubliq/leadgen/internal/model"
)

func testOrg(name string, mentions int) model.Organization {
	articles := make([]model.ArticleMention, mentions)
	for i := range articles {
		articles[i] = model.ArticleMention{
			Title:   fmt.Sprintf("%s article %d", name, i+1),
			Signal:  "signal_a",
			Action:  "dénonce",
			Issue:   "réforme",
			Summary: "implication",
		}
	}
	return model.Organization{
		Name:     name,
		Type:     "association",
		Mentions: mentions,
		Articles: articles,
	}
}

func writeOrganizations(t *testing.T, p *Pipeline, orgs ...model.Organization) {
	t.Helper()
	require.NoError(t, p.store.WriteJSON(p.store.OrganizationsPath(testDate), model.OrganizationSet{Organizations: orgs}))
}

func TestQualifyKeepsLeadsRankedByScore(t *testing.T) {
	verdicts := map[string]string{
		"Alpha": `{"is_lead": true, "score": 3, "reason": "r", "anticipated_need": "polling", "urgency": "low", "note": ""}`,
		"Beta":  `{"is_lead": true, "score": 5, "reason": "r", "anticipated_need": "public affairs", "urgency": "high", "note": ""}`,
		"Gamma": `{"is_lead": false, "score": 4, "reason": "hors cible", "anticipated_need": "none", "urgency": "low", "note": ""}`,
	}
	llm := &fakeLLM{fn: func(prompt string) (string, error) {
		for name, v := range verdicts {
			if strings.Contains(prompt, "NAME: "+name) {
				return v, nil
			}
		}
		return "", fmt.Errorf("unknown organization in prompt")
	}}

	cfg := testConfig(t.TempDir())
	p, store := newTestPipeline(cfg, nil, llm, noEngine)
	writeOrganizations(t, p, testOrg("Alpha", 2), testOrg("Beta", 1), testOrg("Gamma", 1))

	sum, err := p.QualifyLeads(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Organizations)
	assert.Equal(t, 0, sum.Dropped)
	assert.Equal(t, 2, sum.Leads)

	var out model.LeadSet
	require.NoError(t, store.ReadJSON(store.LeadsPath(testDate), &out))
	assert.Equal(t, 3, out.OrganizationsAnalyzed)
	assert.Equal(t, 2, out.LeadsQualified)
	require.Len(t, out.Leads, 2)
	assert.Equal(t, "Beta", out.Leads[0].Organization.Name)
	assert.Equal(t, "Alpha", out.Leads[1].Organization.Name)
}

func TestQualifyScoreTiesKeepOriginalOrder(t *testing.T) {
	llm := &fakeLLM{fn: func(string) (string, error) {
		return `{"is_lead": true, "score": 4, "reason": "r", "anticipated_need": "polling", "urgency": "medium", "note": ""}`, nil
	}}

	cfg := testConfig(t.TempDir())
	p, store := newTestPipeline(cfg, nil, llm, noEngine)
	writeOrganizations(t, p, testOrg("Zulu", 1), testOrg("Echo", 1), testOrg("Mike", 1))

	_, err := p.QualifyLeads(context.Background(), testDate)
	require.NoError(t, err)

	var out model.LeadSet
	require.NoError(t, store.ReadJSON(store.LeadsPath(testDate), &out))
	require.Len(t, out.Leads, 3)
	assert.Equal(t, "Zulu", out.Leads[0].Organization.Name)
	assert.Equal(t, "Echo", out.Leads[1].Organization.Name)
	assert.Equal(t, "Mike", out.Leads[2].Organization.Name)
}

func TestQualifyDropsUnparsableVerdicts(t *testing.T) {
	llm := &fakeLLM{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "NAME: Broken") {
			return "not json at all", nil
		}
		if strings.Contains(prompt, "NAME: Erroring") {
			return "", fmt.Errorf("service down")
		}
		return `{"is_lead": true, "score": 5, "reason": "r", "anticipated_need": "polling", "urgency": "high", "note": ""}`, nil
	}}

	cfg := testConfig(t.TempDir())
	p, _ := newTestPipeline(cfg, nil, llm, noEngine)
	writeOrganizations(t, p, testOrg("Broken", 1), testOrg("Erroring", 1), testOrg("Good", 1))

	sum, err := p.QualifyLeads(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Dropped)
	assert.Equal(t, 1, sum.Leads)
}

func TestQualifyAcceptsFencedVerdict(t *testing.T) {
	llm := &fakeLLM{fn: func(string) (string, error) {
		return "```json\n{\"is_lead\": true, \"score\": 4, \"reason\": \"r\", \"anticipated_need\": \"polling\", \"urgency\": \"medium\", \"note\": \"\"}\n```", nil
	}}

	cfg := testConfig(t.TempDir())
	p, _ := newTestPipeline(cfg, nil, llm, noEngine)
	writeOrganizations(t, p, testOrg("Fenced", 1))

	sum, err := p.QualifyLeads(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Leads)
}

func TestBuildQualificationContextBounded(t *testing.T) {
	org := testOrg("Grande", 8)

	ctx := buildQualificationContext(org, 5)
	assert.Contains(t, ctx, "1. Action:")
	assert.Contains(t, ctx, "5. Action:")
	assert.NotContains(t, ctx, "6. Action:")
}

func TestQualifyRequiresExtractOutput(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p, _ := newTestPipeline(cfg, nil, &fakeLLM{}, noEngine)

	_, err := p.QualifyLeads(context.Background(), testDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leadgen extract")
}
