// Package export serializes the stored record into compact JSON snapshot
// documents for downstream consumption.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/store"
)

// Exporter reads the three tables and writes one document per table plus a
// metadata document with row counts.
type Exporter struct {
	repo   store.Repository
	outDir string
	logger *zap.Logger
	now    func() time.Time
}

// New constructs an Exporter writing into outDir.
func New(repo store.Repository, outDir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		repo:   repo,
		outDir: outDir,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// showDoc always carries the url key, null when absent; only songs and
// associations omit their optional fields.
type showDoc struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	Title string  `json:"title"`
	Venue string  `json:"venue"`
	URL   *string `json:"url"`
}

type songDoc struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// associationDoc uses shortened keys to keep the snapshot compact: h is the
// show id, s the song id, o the position.
type associationDoc struct {
	H int64 `json:"h"`
	S int64 `json:"s"`
	O *int  `json:"o,omitempty"`
}

type metadataDoc struct {
	ExportDate        string `json:"export_date"`
	TotalShows        int    `json:"total_shows"`
	TotalSongs        int    `json:"total_songs"`
	TotalPerformances int    `json:"total_performances"`
}

// Run exports every document. It fails on the first read or write error.
func (e *Exporter) Run(ctx context.Context) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	shows, err := e.repo.ListShows(ctx)
	if err != nil {
		return err
	}
	showDocs := make([]showDoc, 0, len(shows))
	for _, s := range shows {
		doc := showDoc{
			ID:    s.ID,
			Date:  s.Date.Format("2006-01-02"),
			Title: s.Title,
			Venue: s.Venue,
		}
		if s.URL != "" {
			url := s.URL
			doc.URL = &url
		}
		showDocs = append(showDocs, doc)
	}
	if err := e.writeDoc("shows.json", showDocs); err != nil {
		return err
	}

	songs, err := e.repo.ListSongs(ctx)
	if err != nil {
		return err
	}
	songDocs := make([]songDoc, 0, len(songs))
	for _, s := range songs {
		songDocs = append(songDocs, songDoc{ID: s.ID, Name: s.Name, URL: s.URL})
	}
	if err := e.writeDoc("songs.json", songDocs); err != nil {
		return err
	}

	assocs, err := e.repo.ListAssociations(ctx)
	if err != nil {
		return err
	}
	assocDocs := make([]associationDoc, 0, len(assocs))
	for _, a := range assocs {
		assocDocs = append(assocDocs, associationDoc{H: a.ShowID, S: a.SongID, O: a.Position})
	}
	if err := e.writeDoc("performances.json", assocDocs); err != nil {
		return err
	}

	meta := metadataDoc{
		ExportDate:        e.now().Format(time.RFC3339),
		TotalShows:        len(showDocs),
		TotalSongs:        len(songDocs),
		TotalPerformances: len(assocDocs),
	}
	if err := e.writeDoc("metadata.json", meta); err != nil {
		return err
	}

	e.logger.Info("export finished",
		zap.String("dir", e.outDir),
		zap.Int("shows", len(showDocs)),
		zap.Int("songs", len(songDocs)),
		zap.Int("performances", len(assocDocs)),
	)
	return nil
}

// writeDoc marshals v compactly and writes it under the output directory.
func (e *Exporter) writeDoc(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(e.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
