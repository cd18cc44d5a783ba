// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts fetch attempts by outcome ("ok" or "error").
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_pages_fetched_total",
			Help: "Total pages fetched, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	// ShowsProcessed counts index entries by terminal state.
	ShowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_shows_processed_total",
			Help: "Total index entries processed, labeled by status (done, empty, skipped).",
		},
		[]string{"status"},
	)

	// SongsCreated counts songs first seen during this process lifetime.
	SongsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_songs_created_total",
			Help: "Total new songs persisted by the identity cache.",
		},
	)

	// SetlistRowsWritten counts association rows written by batch upserts.
	SetlistRowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_rows_written_total",
			Help: "Total setlist association rows written.",
		},
	)

	// DateParseDrops counts index rows dropped for unparseable dates.
	DateParseDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_date_parse_drops_total",
			Help: "Total index rows dropped because the date was unparseable.",
		},
	)
)
