package model

// OrganizationMention is one organization acting in one article, as returned
// by the extraction service. Scoped to a single article's result.
type OrganizationMention struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Action  string `json:"action"`
	Issue   string `json:"issue"`
	Quote   string `json:"quote"`
	Summary string `json:"summary"`
}

// ArticleSummary is the per-article output of the extraction service.
type ArticleSummary struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Signal  string `json:"signal"`
	Summary string `json:"summary"`
}

// Extraction is the per-article artifact: the article summary plus every
// organization acting in it.
type Extraction struct {
	Article       ArticleSummary        `json:"article"`
	Organizations []OrganizationMention `json:"organizations"`
}

// ArticleMention ties one organization mention back to the article it came
// from, preserving the mention detail.
type ArticleMention struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Signal  string `json:"signal"`
	Action  string `json:"action"`
	Issue   string `json:"issue"`
	Quote   string `json:"quote"`
	Summary string `json:"summary"`
}

// Organization aggregates every mention of one organization name across the
// partition's articles. Mentions always equals len(Articles).
type Organization struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Mentions int              `json:"mentions"`
	Articles []ArticleMention `json:"articles"`
	Issues   []string         `json:"issues"`
	Signals  []string         `json:"signals"`
}

// OrganizationSet is the aggregated-organizations artifact.
type OrganizationSet struct {
	Organizations []Organization `json:"organizations"`
}

// SummarySet is the per-partition article summaries artifact.
type SummarySet struct {
	Articles []ArticleSummary `json:"articles"`
}

// Qualification is the verdict returned by the qualification service for one
// organization.
type Qualification struct {
	IsLead          bool   `json:"is_lead"`
	Score           int    `json:"score"`
	Reason          string `json:"reason"`
	AnticipatedNeed string `json:"anticipated_need"`
	Urgency         string `json:"urgency"`
	Note            string `json:"note"`
}

// Lead pairs a qualified organization with its verdict. Only organizations
// with IsLead true are retained.
type Lead struct {
	Organization  Organization  `json:"organization"`
	Qualification Qualification `json:"qualification"`
}

// LeadSet is the qualified-leads artifact with run metadata.
type LeadSet struct {
	Date                  string `json:"date"`
	OrganizationsAnalyzed int    `json:"organizations_analyzed"`
	LeadsQualified        int    `json:"leads_qualified"`
	Leads                 []Lead `json:"leads"`
}
