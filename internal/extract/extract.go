// Package extract reduces raw page HTML to main article text with
// boilerplate-removal heuristics. MainText is a pure function of its input
// bytes and may return an empty string.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelectors name elements stripped before text harvesting.
var boilerplateSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside", "form",
	"[role=navigation]", "[role=banner]", "[role=complementary]",
}

// contentSelectors are tried in order; the first match with enough text wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".article-body",
	".post-content",
	".entry-content",
}

// minContentChars is the minimum text length for a container to count as the
// article body.
const minContentChars = 200

var (
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// MainText extracts the main body text from raw HTML. Returns "" when no
// article-like content is found or the input is not parsable as HTML.
func MainText(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}

	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range contentSelectors {
		var best string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := harvest(s); len(text) > len(best) {
				best = text
			}
		})
		if len(best) >= minContentChars {
			return best
		}
	}

	// No recognizable container: fall back to body paragraphs.
	if text := harvest(doc.Find("body")); len(text) >= minContentChars {
		return text
	}
	return ""
}

// harvest collects paragraph-level text from a container.
func harvest(s *goquery.Selection) string {
	var parts []string
	s.Find("p, h1, h2, h3, li").Each(func(_ int, p *goquery.Selection) {
		text := clean(p.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return clean(s.Text())
	}
	return strings.Join(parts, "\n\n")
}

// clean collapses whitespace runs.
func clean(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = spaceRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
