package scrape

import "strings"

// Allowlist filters URLs by their resolved origin: a domain passes when it
// matches (or is a subdomain of) a listed domain, or carries a listed TLD
// suffix. Applied to final post-redirect URLs, never to aggregator URLs.
type Allowlist struct {
	domains map[string]struct{}
	tlds    []string
}

// NewAllowlist builds an Allowlist from exact domains and TLD suffixes
// (e.g. ".ca").
func NewAllowlist(domains, tlds []string) *Allowlist {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "www.")
		if d != "" {
			set[d] = struct{}{}
		}
	}
	normalized := make([]string, 0, len(tlds))
	for _, t := range tlds {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		normalized = append(normalized, t)
	}
	return &Allowlist{domains: set, tlds: normalized}
}

// Allowed reports whether the URL's origin passes the allow-list.
func (a *Allowlist) Allowed(rawURL string) bool {
	host := Host(rawURL)
	if host == "" {
		return false
	}

	for _, tld := range a.tlds {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}

	if _, ok := a.domains[host]; ok {
		return true
	}
	for d := range a.domains {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
