package lake

import (
	"encoding/xml"
	"time"
)

// pubDateLayout is the timestamp format used in the consolidated document.
const pubDateLayout = time.RFC1123Z

// FeedDocument is the consolidated item document written by the collector
// and consumed by the parser.
type FeedDocument struct {
	XMLName xml.Name   `xml:"items"`
	Date    string     `xml:"date,attr"`
	Items   []FeedItem `xml:"item"`
}

// FeedItem is one consolidated feed entry. Empty sub-elements mean the value
// was absent upstream.
type FeedItem struct {
	Signal  string `xml:"signal,attr"`
	Title   string `xml:"title"`
	Source  string `xml:"source"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// FormatPubDate renders a publication timestamp for the document.
func FormatPubDate(t time.Time) string {
	return t.Format(pubDateLayout)
}

// ParsePubDate parses a document timestamp; ok is false when absent or
// malformed.
func ParsePubDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(pubDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
