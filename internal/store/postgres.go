package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresConfig controls the Postgres connection pool.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Postgres implements Repository on a pgx connection pool.
type Postgres struct {
	db DB
}

// NewPostgres connects a pool and returns a Postgres repository.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{db: pool}, nil
}

// NewPostgresWithDB constructs a repository from an existing pool, primarily
// for testing.
func NewPostgresWithDB(db DB) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Postgres{db: db}, nil
}

// Close releases the underlying pool resources.
func (p *Postgres) Close() {
	if p == nil || p.db == nil {
		return
	}
	p.db.Close()
}

// Migrate applies the idempotent schema DDL.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const upsertShowSQL = `
INSERT INTO show (date, title, venue, url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (date, title) DO UPDATE SET
	venue = EXCLUDED.venue,
	url = EXCLUDED.url
RETURNING id`

// UpsertShow inserts or updates a show and returns its id.
func (p *Postgres) UpsertShow(ctx context.Context, show ShowRecord) (int64, error) {
	var id int64
	err := p.db.QueryRow(ctx, upsertShowSQL,
		show.Date,
		show.Title,
		show.Venue,
		nullable(show.URL),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert show %q: %w", show.Title, err)
	}
	return id, nil
}

const upsertSongSQL = `
INSERT INTO song (name, url)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET
	url = EXCLUDED.url
RETURNING id`

// UpsertSong inserts or updates a song and returns its id.
func (p *Postgres) UpsertSong(ctx context.Context, name, url string) (int64, error) {
	var id int64
	err := p.db.QueryRow(ctx, upsertSongSQL, name, nullable(url)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert song %q: %w", name, err)
	}
	return id, nil
}

const upsertAssociationSQL = `
INSERT INTO setlist_entry (show_id, song_id, position, remark)
VALUES ($1, $2, $3, $4)
ON CONFLICT (show_id, song_id) DO UPDATE SET
	position = EXCLUDED.position,
	remark = EXCLUDED.remark`

// ReplaceSetlist upserts every association row for one show inside a single
// transaction. Either all rows land or none do.
func (p *Postgres) ReplaceSetlist(ctx context.Context, showID int64, rows []SetlistRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin setlist batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, row := range rows {
		_, err := tx.Exec(ctx, upsertAssociationSQL,
			showID,
			row.SongID,
			row.Position,
			nullable(row.Remark),
		)
		if err != nil {
			return fmt.Errorf("upsert setlist row (show %d, song %d): %w", showID, row.SongID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit setlist batch: %w", err)
	}
	return nil
}

// SongIDsByName bulk-loads every known song identity.
func (p *Postgres) SongIDsByName(ctx context.Context) (map[string]int64, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name FROM song`)
	if err != nil {
		return nil, fmt.Errorf("load songs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load songs: %w", err)
	}
	return ids, nil
}

// ListShows returns all shows sorted by date descending.
func (p *Postgres) ListShows(ctx context.Context) ([]Show, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, date, title, venue, url FROM show ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []Show
	for rows.Next() {
		var (
			s   Show
			url *string
		)
		if err := rows.Scan(&s.ID, &s.Date, &s.Title, &s.Venue, &url); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		if url != nil {
			s.URL = *url
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return shows, nil
}

// ListSongs returns all songs sorted by name ascending.
func (p *Postgres) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, name, url FROM song ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var (
			s   Song
			url *string
		)
		if err := rows.Scan(&s.ID, &s.Name, &url); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		if url != nil {
			s.URL = *url
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// ListAssociations returns all associations sorted by show id then position.
func (p *Postgres) ListAssociations(ctx context.Context) ([]AssociationRow, error) {
	rows, err := p.db.Query(ctx,
		`SELECT show_id, song_id, position FROM setlist_entry ORDER BY show_id ASC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	defer rows.Close()

	var assocs []AssociationRow
	for rows.Next() {
		var a AssociationRow
		if err := rows.Scan(&a.ShowID, &a.SongID, &a.Position); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	return assocs, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
