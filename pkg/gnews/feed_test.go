package gnews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>"association Québec" - Google Actualités</title>
<item>
<title>Une fédération dénonce le projet de loi</title>
<link>https://news.google.com/rss/articles/CBMiabc?oc=5</link>
<pubDate>Fri, 28 Aug 2026 14:30:00 -0400</pubDate>
<source url="https://www.ledevoir.com">Le Devoir</source>
</item>
<item>
<title>Sans date ni source</title>
<link>https://news.google.com/rss/articles/CBMidef?oc=5</link>
</item>
</channel>
</rss>`

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, feed.Channel.Items, 2)

	first := feed.Channel.Items[0]
	assert.Equal(t, "Une fédération dénonce le projet de loi", first.Title)
	assert.Equal(t, "https://news.google.com/rss/articles/CBMiabc?oc=5", first.Link)
	assert.Equal(t, "Le Devoir", first.Source)

	pub, ok := first.PublishedAt()
	require.True(t, ok)
	want := time.Date(2026, 8, 28, 14, 30, 0, 0, time.FixedZone("", -4*3600))
	assert.True(t, pub.Equal(want))

	second := feed.Channel.Items[1]
	assert.Empty(t, second.Source)
	_, ok = second.PublishedAt()
	assert.False(t, ok)
}

func TestParseFeedMalformed(t *testing.T) {
	_, err := ParseFeed([]byte("<rss><channel><item>"))
	require.Error(t, err)
}

func TestPublishedAtLayouts(t *testing.T) {
	tests := []struct {
		name    string
		pubDate string
		ok      bool
	}{
		{"rfc1123z", "Fri, 28 Aug 2026 14:30:00 -0400", true},
		{"rfc1123", "Fri, 28 Aug 2026 14:30:00 GMT", true},
		{"rfc822z", "28 Aug 26 14:30 -0400", true},
		{"rfc822", "28 Aug 26 14:30 GMT", true},
		{"iso8601 unsupported", "2026-08-28T14:30:00Z", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Item{PubDate: tt.pubDate}.PublishedAt()
			assert.Equal(t, tt.ok, ok)
		})
	}
}
