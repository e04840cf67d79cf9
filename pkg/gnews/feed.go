package gnews

import (
	"encoding/xml"
	"time"

	"github.com/rotisserie/eris"
)

// Feed is a parsed RSS search result.
type Feed struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel holds the feed's item list.
type Channel struct {
	Title string `xml:"title"`
	Items []Item `xml:"item"`
}

// Item is one feed entry. Source is the originating outlet; Link is the
// aggregator's (possibly redirecting) article URL.
type Item struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	Source  string `xml:"source"`
	PubDate string `xml:"pubDate"`
}

// pubDateLayouts are the timestamp formats observed in feed documents.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// ParseFeed parses a raw feed document. Structurally malformed input is an
// error; missing item sub-fields are left empty.
func ParseFeed(raw []byte) (*Feed, error) {
	var feed Feed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, eris.Wrap(err, "gnews: parse feed")
	}
	return &feed, nil
}

// PublishedAt parses the item's publication timestamp; ok is false when the
// timestamp is missing or unparsable.
func (it Item) PublishedAt() (time.Time, bool) {
	if it.PubDate == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, it.PubDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
