// Package crawl drives the scrape-normalize-persist pipeline: one pass over
// the performance index, then per-show detail extraction and batched writes.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/metrics"
	"github.com/liveatlas/setlist-crawler/internal/scrape"
	"github.com/liveatlas/setlist-crawler/internal/store"
)

// Source yields the performance index and per-show setlists.
type Source interface {
	LiveHistory(ctx context.Context) ([]scrape.ShowEntry, error)
	Setlist(ctx context.Context, detailURL string) ([]scrape.SetlistEntry, error)
}

// Config controls engine pacing.
type Config struct {
	// Delay is applied after every entry, success or skip, to bound the
	// request rate against the remote site. It never grows on failure.
	Delay time.Duration
}

// Engine processes index entries strictly in document order, one at a time.
// Faults are isolated per show: only an index-page fetch failure aborts the
// run.
type Engine struct {
	source Source
	repo   store.Repository
	cache  *store.SongCache
	cfg    Config
	logger *zap.Logger
}

// New constructs an Engine.
func New(source Source, repo store.Repository, cache *store.SongCache, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		source: source,
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes one full crawl. It returns an error only when the index page
// cannot be fetched or the context ends; everything else degrades per show.
func (e *Engine) Run(ctx context.Context) error {
	log := e.logger.With(zap.String("run_id", uuid.NewString()))

	entries, err := e.source.LiveHistory(ctx)
	if errors.Is(err, scrape.ErrNoHistoryTable) {
		log.Warn("index page has no history table; nothing to crawl")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch live history: %w", err)
	}
	log.Info("live history fetched", zap.Int("shows", len(entries)))

	for i, entry := range entries {
		e.processEntry(ctx, log, i+1, len(entries), entry)
		if err := e.pace(ctx); err != nil {
			return err
		}
	}

	log.Info("crawl finished",
		zap.Int("shows", len(entries)),
		zap.Int("songs_cached", e.cache.Len()),
	)
	return nil
}

// processEntry runs one index entry through the pipeline: show upsert,
// detail fetch, song resolution, association batch. Any failure skips the
// rest of this entry without touching the run.
func (e *Engine) processEntry(ctx context.Context, log *zap.Logger, seq, total int, entry scrape.ShowEntry) {
	log = log.With(
		zap.Int("seq", seq),
		zap.Int("total", total),
		zap.String("title", entry.Title),
		zap.Time("date", entry.Date),
	)
	log.Info("processing show")

	showID, err := e.repo.UpsertShow(ctx, store.ShowRecord{
		Date:  entry.Date,
		Title: entry.Title,
		Venue: entry.Venue,
		URL:   entry.DetailURL,
	})
	if err != nil {
		log.Error("show upsert failed; skipping entry", zap.Error(err))
		metrics.ShowsProcessed.WithLabelValues("skipped").Inc()
		return
	}

	setlist, err := e.source.Setlist(ctx, entry.DetailURL)
	if err != nil {
		// A broken detail page never aborts the crawl; the show keeps its
		// row and simply has no songs this run.
		log.Warn("detail page unavailable; treating as empty setlist", zap.Error(err))
		setlist = nil
	}
	if len(setlist) == 0 {
		log.Info("no songs for show")
		metrics.ShowsProcessed.WithLabelValues("empty").Inc()
		return
	}

	cachedBefore := e.cache.Len()
	rows := make([]store.SetlistRow, 0, len(setlist))
	for pos, song := range setlist {
		songID, err := e.cache.Resolve(ctx, song.Name, song.URL)
		if err != nil {
			log.Error("song resolution failed; skipping show's setlist",
				zap.String("song", song.Name),
				zap.Error(err),
			)
			metrics.ShowsProcessed.WithLabelValues("skipped").Inc()
			return
		}
		rows = append(rows, store.SetlistRow{
			SongID:   songID,
			Position: pos + 1,
			Remark:   song.Remark,
		})
	}
	if created := e.cache.Len() - cachedBefore; created > 0 {
		log.Info("new songs persisted", zap.Int("count", created))
		metrics.SongsCreated.Add(float64(created))
	}

	if err := e.repo.ReplaceSetlist(ctx, showID, rows); err != nil {
		log.Error("setlist batch failed; skipping show", zap.Error(err))
		metrics.ShowsProcessed.WithLabelValues("skipped").Inc()
		return
	}

	log.Info("setlist written", zap.Int("songs", len(rows)))
	metrics.SetlistRowsWritten.Add(float64(len(rows)))
	metrics.ShowsProcessed.WithLabelValues("done").Inc()
}

// pace applies the fixed inter-entry delay, honoring cancellation.
func (e *Engine) pace(ctx context.Context) error {
	if e.cfg.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
