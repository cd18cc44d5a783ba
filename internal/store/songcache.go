package store

import (
	"context"
	"fmt"
)

// SongResolver is the subset of Repository the cache writes through.
type SongResolver interface {
	SongIDsByName(ctx context.Context) (map[string]int64, error)
	UpsertSong(ctx context.Context, name, url string) (int64, error)
}

// SongCache is a write-through name-to-id map over the song table. It is
// built once per run and is not safe for concurrent use; the pipeline is
// strictly sequential.
type SongCache struct {
	repo SongResolver
	ids  map[string]int64
}

// NewSongCache bulk-loads every known song identity from the store.
func NewSongCache(ctx context.Context, repo SongResolver) (*SongCache, error) {
	ids, err := repo.SongIDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("prime song cache: %w", err)
	}
	if ids == nil {
		ids = make(map[string]int64)
	}
	return &SongCache{repo: repo, ids: ids}, nil
}

// Resolve returns the song's id. A hit returns the cached id immediately and
// ignores the url; a miss persists the song first, so a cache entry exists
// only when the corresponding row does.
func (c *SongCache) Resolve(ctx context.Context, name, url string) (int64, error) {
	if id, ok := c.ids[name]; ok {
		return id, nil
	}
	id, err := c.repo.UpsertSong(ctx, name, url)
	if err != nil {
		return 0, err
	}
	c.ids[name] = id
	return id, nil
}

// Contains reports whether the name is already cached.
func (c *SongCache) Contains(name string) bool {
	_, ok := c.ids[name]
	return ok
}

// Len returns the number of cached identities.
func (c *SongCache) Len() int {
	return len(c.ids)
}
