package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofilter-bot/internal/model"
)

type fakeFileFinder struct {
	records map[string]*model.FileRecord
	calls   int
}

func (f *fakeFileFinder) GetByID(_ context.Context, id string) (*model.FileRecord, error) {
	f.calls++
	return f.records[id], nil
}

func TestFileServiceDetails(t *testing.T) {
	finder := &fakeFileFinder{records: map[string]*model.FileRecord{
		"abc": {ID: "abc", FileName: "movie.mkv", FileSize: 1 << 30},
	}}
	svc := NewFileService(finder, 8)
	ctx := context.Background()

	rec, err := svc.Details(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "movie.mkv", rec.FileName)

	// Second lookup is served from cache.
	_, err = svc.Details(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls)
}

func TestFileServiceMissNotCached(t *testing.T) {
	finder := &fakeFileFinder{records: map[string]*model.FileRecord{}}
	svc := NewFileService(finder, 8)
	ctx := context.Background()

	rec, err := svc.Details(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// A miss goes back to the store every time.
	_, err = svc.Details(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, 2, finder.calls)
}
