// Package store persists shows, songs, and their setlist associations in a
// relational database behind a narrow repository interface.
package store

import (
	"context"
	"time"
)

// ShowRecord is the input to a show upsert.
type ShowRecord struct {
	Date  time.Time
	Title string
	Venue string
	URL   string // empty means absent
}

// Show is a stored performance event.
type Show struct {
	ID    int64
	Date  time.Time
	Title string
	Venue string
	URL   string
}

// Song is a stored musical work, unique by name.
type Song struct {
	ID   int64
	Name string
	URL  string
}

// SetlistRow is one association to write for a show.
type SetlistRow struct {
	SongID   int64
	Position int
	Remark   string // empty means absent
}

// AssociationRow is one stored association, as read for export.
type AssociationRow struct {
	ShowID   int64
	SongID   int64
	Position *int
}

// Repository defines the persistence operations the pipeline and exporter
// depend on. All writes are idempotent upserts keyed on the declared
// uniqueness constraints.
type Repository interface {
	// UpsertShow inserts a show or, on (date, title) conflict, updates its
	// venue and url. The show id is returned either way.
	UpsertShow(ctx context.Context, show ShowRecord) (int64, error)

	// UpsertSong inserts a song or, on name conflict, updates its url.
	// The song id is returned either way.
	UpsertSong(ctx context.Context, name, url string) (int64, error)

	// ReplaceSetlist writes every association row for one show as a single
	// atomic unit, updating position and remark on (show, song) conflict.
	ReplaceSetlist(ctx context.Context, showID int64, rows []SetlistRow) error

	// SongIDsByName returns every known song name mapped to its id.
	SongIDsByName(ctx context.Context) (map[string]int64, error)

	// ListShows returns all shows sorted by date descending.
	ListShows(ctx context.Context) ([]Show, error)

	// ListSongs returns all songs sorted by name ascending.
	ListSongs(ctx context.Context) ([]Song, error)

	// ListAssociations returns all associations sorted by show id then
	// position.
	ListAssociations(ctx context.Context) ([]AssociationRow, error)
}
