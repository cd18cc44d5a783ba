package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSongStore records resolver calls.
type fakeSongStore struct {
	existing    map[string]int64
	nextID      int64
	upsertErr   error
	upsertCalls []string
}

func (f *fakeSongStore) SongIDsByName(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.existing))
	for k, v := range f.existing {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSongStore) UpsertSong(_ context.Context, name, _ string) (int64, error) {
	f.upsertCalls = append(f.upsertCalls, name)
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.nextID++
	return f.nextID, nil
}

func TestSongCachePrimesFromStore(t *testing.T) {
	t.Parallel()

	fake := &fakeSongStore{existing: map[string]int64{"Intro": 1, "Finale": 2}}
	cache, err := NewSongCache(context.Background(), fake)
	require.NoError(t, err)

	require.Equal(t, 2, cache.Len())
	require.True(t, cache.Contains("Intro"))
	require.False(t, cache.Contains("Unknown"))
}

func TestSongCacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	fake := &fakeSongStore{existing: map[string]int64{"Intro": 1}}
	cache, err := NewSongCache(context.Background(), fake)
	require.NoError(t, err)

	// A later URL for an already-known name is ignored on hit.
	id, err := cache.Resolve(context.Background(), "Intro", "https://example.com/song/new-url")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Empty(t, fake.upsertCalls)
}

func TestSongCacheMissWritesThrough(t *testing.T) {
	t.Parallel()

	fake := &fakeSongStore{existing: map[string]int64{}, nextID: 10}
	cache, err := NewSongCache(context.Background(), fake)
	require.NoError(t, err)

	id, err := cache.Resolve(context.Background(), "New Song", "https://example.com/song/new")
	require.NoError(t, err)
	require.Equal(t, int64(11), id)
	require.Equal(t, []string{"New Song"}, fake.upsertCalls)
	require.True(t, cache.Contains("New Song"))

	// Second resolve is a pure cache hit.
	again, err := cache.Resolve(context.Background(), "New Song", "")
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Len(t, fake.upsertCalls, 1)
}

func TestSongCacheMissFailureDoesNotCache(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection lost")
	fake := &fakeSongStore{existing: map[string]int64{}, upsertErr: boom}
	cache, err := NewSongCache(context.Background(), fake)
	require.NoError(t, err)

	_, err = cache.Resolve(context.Background(), "Doomed", "")
	require.ErrorIs(t, err, boom)
	require.False(t, cache.Contains("Doomed"))
	require.Zero(t, cache.Len())
}
