package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// songColumnHeader identifies the setlist table on a detail page.
const songColumnHeader = "楽曲名"

// remarkJoin separates multiple remark rows attached to the same song.
const remarkJoin = "; "

// Setlist fetches a show's detail page and extracts its ordered setlist.
// An empty detailURL yields an empty setlist with no fetch. Fetch and parse
// failures are returned to the caller, which is expected to treat them as
// "no songs for this show"; a page without a recognizable setlist table is
// not an error.
func (c *Client) Setlist(ctx context.Context, detailURL string) ([]SetlistEntry, error) {
	if detailURL == "" {
		return nil, nil
	}

	page, err := c.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	table := findSetlistTable(doc)
	if table == nil {
		c.logger.Debug("no setlist table on detail page", zap.String("url", detailURL))
		return nil, nil
	}

	return extractSetlist(table, c.pageBase(page)), nil
}

// findSetlistTable returns the first structured table whose header row has a
// song-title column, or nil.
func findSetlistTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(historyTableSelector).EachWithBreak(func(_ int, table *goquery.Selection) bool {
		hasSongColumn := false
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			if strings.Contains(th.Text(), songColumnHeader) {
				hasSongColumn = true
			}
		})
		if hasSongColumn {
			found = table
			return false
		}
		return true
	})
	return found
}

// extractSetlist folds the table's body rows into setlist entries. Each row
// is classified by its second cell: a hyperlink makes it a song row, which
// becomes the attachment target for any remark rows that follow; a row
// without a link contributes its text to the current song's remark. Remark
// rows that precede the first song are discarded.
func extractSetlist(table *goquery.Selection, base *url.URL) []SetlistEntry {
	var entries []SetlistEntry
	current := -1

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		songCell := cells.Eq(1)

		link := songCell.Find("a").First()
		if href, ok := link.Attr("href"); ok && href != "" {
			entries = append(entries, SetlistEntry{
				Name: strings.TrimSpace(link.Text()),
				URL:  anchorURL(base, songCell),
			})
			current = len(entries) - 1
			return
		}

		remark := strings.TrimSpace(songCell.Text())
		if remark == "" || current < 0 {
			return
		}
		if entries[current].Remark != "" {
			entries[current].Remark += remarkJoin + remark
		} else {
			entries[current].Remark = remark
		}
	})

	return entries
}
