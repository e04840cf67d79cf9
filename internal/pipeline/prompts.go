package pipeline

import (
	"fmt"
	"strings"

	"github.com/opubliq/leadgen/internal/model"
)

// relevancePrompt asks for a bare 1-5 relevance score from title and source
// only.
const relevancePrompt = `You are a public-affairs business analyst for Opubliq, a Quebec firm offering government relations, public communications, issue and crisis management, and strategic monitoring services.

Rate how promising this news article is for identifying potential clients.

Title: %s
Source: %s

Scoring:
- 5: an organization clearly engaged in public affairs or lobbying (parliamentary committee testimony, legal challenge to a law, public campaign)
- 4: an organization with significant government-facing stakes (professional order reacting to policy, association making representations)
- 3: public issue with only an indirect link to Opubliq's services
- 2: marginal mention of organizations
- 1: no link to Opubliq's services

IMPORTANT: Reply with a single digit between 1 and 5. No explanation.`

// extractionPrompt asks for an article summary plus the organizations acting
// in the article, strictly tied to its title.
const extractionPrompt = `Analyze this Quebec news article.

ARTICLE TITLE: %s

CONTENT: %s

Focus ONLY on organizations directly related to the TITLE. Ignore organizations appearing in ads, suggested articles, or unrelated page content. Extract every organization that ACTS in the article (unions, associations, professional orders, coalitions, nonprofits, citizen groups, political parties, governments, ministries, municipalities, private companies taking a public position).

For each organization give:
- name: full name
- type: kind of organization (union, association, professional order, coalition, nonprofit, municipality, government, political party, company, ...)
- action: main action taken (proposes, tables, denounces, demands, submits a brief, reacts, criticizes, announces, ...)
- issue: the main issue in 5-10 words
- quote: 1-2 key sentences from the content mentioning the organization
- summary: the organization's involvement in 15-25 words

Also write a 3-4 sentence summary of the article covering the main subject, key actors, the issue at stake, and the principal position or action.

Reply ONLY with valid JSON, no line breaks inside string values:
{
  "summary": "...",
  "organizations": [
    {"name": "...", "type": "...", "action": "...", "issue": "...", "quote": "...", "summary": "..."}
  ]
}

If no organization acts in relation to the title, return an empty organizations list.`

// qualificationPrompt asks for a lead verdict on one aggregated organization.
const qualificationPrompt = `You are a business-development analyst for Opubliq, a Quebec firm specialized in:
1. Public-opinion research: polling, sentiment analysis, custom studies
2. Public affairs: influencing decision-makers, social-acceptability assessment
3. Strategic communication: positioning, communication strategy, dashboards
4. Fundraising: donor profiling, tailored strategies

TARGET CLIENTS: associations, federations and coalitions taking public positions; unions in negotiation or conflict; professional orders opposing reforms; nonprofits and citizen groups mobilized on issues; organizations in parliamentary consultation.

EXCLUDE: political parties, governments and public bodies, large companies with in-house teams.

ORGANIZATION UNDER REVIEW:
NAME: %s
TYPE: %s
MENTIONS: %d

ACTION CONTEXT:
%s

Decide whether this organization is a potential lead for Opubliq.

Scoring: 5 = priority lead (clear need, urgent context, good target); 4 = strong lead; 3 = average lead; 2 = weak lead; 1 = not a lead.

Reply ONLY with valid JSON:
{
  "is_lead": true,
  "score": 1,
  "reason": "1-2 sentence explanation",
  "anticipated_need": "polling, public affairs, communication, fundraising, or none",
  "urgency": "high, medium, or low",
  "note": "one additional relevant detail"
}

Be selective: only real potential leads should have is_lead true.`

// buildQualificationContext summarizes up to max mentions, in their existing
// order, for the qualification prompt.
func buildQualificationContext(org model.Organization, max int) string {
	n := len(org.Articles)
	if n > max {
		n = max
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a := org.Articles[i]
		parts = append(parts, fmt.Sprintf(
			"%d. Action: %s\n   Issue: %s\n   Signal: %s\n   Summary: %s",
			i+1, a.Action, a.Issue, a.Signal, a.Summary,
		))
	}
	return strings.Join(parts, "\n\n")
}
