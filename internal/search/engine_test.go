package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autofilter-bot/internal/model"
)

// fakeStore serves canned results keyed by tier and query and records every
// lookup so tests can assert on the cascade order.
type fakeStore struct {
	results map[string][]model.FileRecord
	errs    map[string]error
	calls   []string
}

func (f *fakeStore) key(tier model.Tier, query string) string {
	return string(tier) + "|" + query
}

func (f *fakeStore) TextSearch(_ context.Context, tier model.Tier, query string, offset, limit int) ([]model.FileRecord, int64, error) {
	key := f.key(tier, query)
	f.calls = append(f.calls, fmt.Sprintf("%s@%d", key, offset))
	if err := f.errs[key]; err != nil {
		return nil, 0, err
	}
	docs := f.results[key]
	total := int64(len(docs))
	if offset >= len(docs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], total, nil
}

func records(names ...string) []model.FileRecord {
	recs := make([]model.FileRecord, 0, len(names))
	for i, n := range names {
		recs = append(recs, model.FileRecord{ID: fmt.Sprintf("f%d", i), FileName: n, FileSize: 100})
	}
	return recs
}

func newTestEngine(store *fakeStore) *Engine {
	return NewEngine(store, zap.NewNop())
}

func TestSearchEmptyQuery(t *testing.T) {
	store := &fakeStore{}
	eng := newTestEngine(store)

	for _, q := range []string{"", "   ", "?!..."} {
		res := eng.Search(context.Background(), q, 10, 0, "", model.TierAll)
		assert.Empty(t, res.Files, "query %q", q)
		assert.Zero(t, res.Total, "query %q", q)
		assert.False(t, res.HasMore, "query %q", q)
	}
	assert.Empty(t, store.calls, "blank queries must not hit the store")
}

func TestSearchCascadeStopsAtFirstHit(t *testing.T) {
	store := &fakeStore{results: map[string][]model.FileRecord{
		"primary|avengers": records("avengers.mkv"),
		"cloud|avengers":   records("avengers-cloud.mkv", "better-match.mkv"),
		"archive|avengers": records("avengers-archive.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "Avengers", 10, 0, "", model.TierAll)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "avengers.mkv", res.Files[0].FileName)
	assert.Equal(t, []string{"primary|avengers@0"}, store.calls,
		"cloud and archive must not be consulted when primary matches")
}

func TestSearchCascadeFallsThroughEmptyTiers(t *testing.T) {
	store := &fakeStore{results: map[string][]model.FileRecord{
		"archive|avengers": records("old-avengers.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "avengers", 10, 0, "", model.TierAll)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "old-avengers.mkv", res.Files[0].FileName)
	assert.Equal(t, []string{"primary|avengers@0", "cloud|avengers@0", "archive|avengers@0"}, store.calls)
}

func TestSearchPrefixFallback(t *testing.T) {
	// Full query misses everywhere; the prefix walk starts over at offset 0.
	store := &fakeStore{results: map[string][]model.FileRecord{
		"cloud|aven endg": records("avengers-endgame.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "avengers endgame", 10, 20, "", model.TierAll)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "avengers-endgame.mkv", res.Files[0].FileName)
	assert.Contains(t, store.calls, "cloud|aven endg@0")
}

func TestSearchSingleTierPrefixRetry(t *testing.T) {
	store := &fakeStore{results: map[string][]model.FileRecord{
		"archive|aven": records("avengers.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "aven4", 10, 0, "", model.TierArchive)
	require.Len(t, res.Files, 1)
	// Only the selected tier is ever touched.
	for _, call := range store.calls {
		assert.Contains(t, call, "archive|")
	}
}

func TestSearchTierErrorDegradesToMiss(t *testing.T) {
	store := &fakeStore{
		results: map[string][]model.FileRecord{
			"cloud|avengers": records("avengers.mkv"),
		},
		errs: map[string]error{
			"primary|avengers": errors.New("index offline"),
		},
	}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "avengers", 10, 0, "", model.TierAll)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "avengers.mkv", res.Files[0].FileName)
}

func TestSearchLanguageFilter(t *testing.T) {
	store := &fakeStore{results: map[string][]model.FileRecord{
		"primary|movie": records("Movie.Hindi.mkv", "Movie.English.mkv", "movie.hindi.720p.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "movie", 10, 0, "hindi", model.TierAll)
	require.Len(t, res.Files, 2)
	assert.Equal(t, int64(2), res.Total, "total is recomputed from the filtered page")
	assert.False(t, res.HasMore)
}

func TestSearchPagination(t *testing.T) {
	docs := records("a", "b", "c", "d", "e")
	store := &fakeStore{results: map[string][]model.FileRecord{
		"primary|movie": docs,
	}}
	eng := newTestEngine(store)

	first := eng.Search(context.Background(), "movie", 2, 0, "", model.TierPrimary)
	require.Len(t, first.Files, 2)
	assert.Equal(t, int64(5), first.Total)
	assert.True(t, first.HasMore)
	assert.Equal(t, 2, first.NextOffset)

	last := eng.Search(context.Background(), "movie", 2, 4, "", model.TierPrimary)
	require.Len(t, last.Files, 1)
	assert.False(t, last.HasMore, "final page carries the terminal cursor")
}

func TestSearchUnknownTierDefaultsToPrimary(t *testing.T) {
	store := &fakeStore{results: map[string][]model.FileRecord{
		"primary|movie": records("movie.mkv"),
	}}
	eng := newTestEngine(store)

	res := eng.Search(context.Background(), "movie", 10, 0, "", model.Tier("bogus"))
	require.Len(t, res.Files, 1)
}
