// Package model defines the records flowing between pipeline stages.
package model

import "time"

// NotAvailable is the sentinel written for feed sub-fields absent upstream.
const NotAvailable = "N/A"

// FeedItem is one article surfaced by a search signal.
type FeedItem struct {
	Signal      string     `csv:"signal"`
	Title       string     `csv:"title"`
	Source      string     `csv:"source"`
	URL         string     `csv:"url"`
	PublishedAt *time.Time `csv:"published_at,omitempty"`
}

// FetchedArticle is a FeedItem whose page content has been resolved and
// stored. FinalURL is the post-redirect URL; HTMLFile names the stored raw
// content within the partition's html directory.
type FetchedArticle struct {
	Signal    string `csv:"signal"`
	Title     string `csv:"title"`
	Source    string `csv:"source"`
	URL       string `csv:"url"`
	FinalURL  string `csv:"final_url"`
	HTMLFile  string `csv:"html_file"`
	Relevance int    `csv:"relevance,omitempty"`
}

// WarehouseRecord is a normalized, extracted-text article ready for entity
// extraction. Text is empty when extraction failed; the record survives.
type WarehouseRecord struct {
	Signal string `csv:"signal"`
	Title  string `csv:"title"`
	Source string `csv:"source"`
	URL    string `csv:"url"`
	Text   string `csv:"text"`
}
