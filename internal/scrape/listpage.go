package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/dateparse"
	"github.com/liveatlas/setlist-crawler/internal/metrics"
)

// historyTableSelector matches the structured tables the site renders for
// both the performance index and the per-show setlists.
const historyTableSelector = "table.table-fixed"

// ErrNoHistoryTable indicates the index page rendered without its
// performance-history table.
var ErrNoHistoryTable = errors.New("history table not found")

// Client scrapes the performance-history pages of a single site.
type Client struct {
	fetcher  Fetcher
	indexURL string
	logger   *zap.Logger
}

// NewClient builds a Client rooted at the given index URL.
func NewClient(fetcher Fetcher, indexURL string, logger *zap.Logger) *Client {
	return &Client{
		fetcher:  fetcher,
		indexURL: indexURL,
		logger:   logger,
	}
}

// LiveHistory fetches the index page and returns its performance entries in
// document order. A fetch failure is returned as-is: without the index there
// is nothing to crawl. A missing history table returns ErrNoHistoryTable.
// Rows whose date cannot be normalized are dropped.
func (c *Client) LiveHistory(ctx context.Context) ([]ShowEntry, error) {
	page, err := c.fetcher.Fetch(ctx, c.indexURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	table := doc.Find(historyTableSelector).First()
	if table.Length() == 0 {
		return nil, ErrNoHistoryTable
	}

	base := c.pageBase(page)
	var entries []ShowEntry
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		title := strings.TrimSpace(cells.Eq(1).Text())
		venue := strings.TrimSpace(cells.Eq(2).Text())

		date, err := dateparse.Parse(dateText)
		if err != nil {
			c.logger.Warn("dropping entry with unparseable date",
				zap.String("date_text", dateText),
				zap.String("title", title),
			)
			metrics.DateParseDrops.Inc()
			return
		}

		entries = append(entries, ShowEntry{
			Date:      date,
			Title:     title,
			Venue:     venue,
			DetailURL: anchorURL(base, cells.Eq(1)),
		})
	})

	return entries, nil
}

// pageBase returns the URL all relative links on the page resolve against.
func (c *Client) pageBase(page Page) *url.URL {
	for _, raw := range []string{page.FinalURL, c.indexURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil {
			return u
		}
	}
	return nil
}

// anchorURL extracts the first anchor's href from a cell, resolved absolute.
// Returns "" when the cell has no usable link.
func anchorURL(base *url.URL, cell *goquery.Selection) string {
	href, ok := cell.Find("a").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
