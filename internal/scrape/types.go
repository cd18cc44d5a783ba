// Package scrape fetches and parses the performance-history pages of the
// source site: the index table of shows and the per-show setlist tables.
package scrape

import (
	"context"
	"time"
)

// Page is the raw result of fetching a single URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// ShowEntry is one row of the performance-history index table.
type ShowEntry struct {
	Date      time.Time
	Title     string
	Venue     string
	DetailURL string // empty when the row carries no link
}

// SetlistEntry is one song extracted from a detail page, in setlist order.
type SetlistEntry struct {
	Name   string
	URL    string
	Remark string
}

// Fetcher retrieves a single page by absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}
