package app

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"autofilter-bot/internal/model"
)

const detailsCacheTTL = 10 * time.Minute

// FileFinder resolves a file id across the tiered store.
type FileFinder interface {
	GetByID(ctx context.Context, id string) (*model.FileRecord, error)
}

// FileService answers "file#<id>" callbacks. Lookups are cached in an
// expirable LRU because popular files get tapped repeatedly from old result
// lists.
type FileService struct {
	files FileFinder
	cache *expirable.LRU[string, *model.FileRecord]
}

func NewFileService(files FileFinder, cacheSize int) *FileService {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &FileService{
		files: files,
		cache: expirable.NewLRU[string, *model.FileRecord](cacheSize, nil, detailsCacheTTL),
	}
}

// Details returns the record for id, or (nil, nil) when no tier holds it.
// Only hits are cached; a miss may be a file that is being indexed right now.
func (s *FileService) Details(ctx context.Context, id string) (*model.FileRecord, error) {
	if rec, ok := s.cache.Get(id); ok {
		return rec, nil
	}
	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.cache.Add(id, rec)
	}
	return rec, nil
}
