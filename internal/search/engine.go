package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"autofilter-bot/internal/model"
)

// TierSearcher is the store-side contract the engine needs: ranked text
// search over a single tier with skip/limit pagination.
type TierSearcher interface {
	TextSearch(ctx context.Context, tier model.Tier, query string, offset, limit int) ([]model.FileRecord, int64, error)
}

// Result is one page of a search plus the cursor to the next one.
// HasMore false marks the terminal page.
type Result struct {
	Files      []model.FileRecord
	Total      int64
	NextOffset int
	HasMore    bool
}

// Engine runs the cascade search policy over the tiered store: strict
// priority fallback primary -> cloud -> archive, full query before prefix
// query, never merging results across tiers.
type Engine struct {
	store  TierSearcher
	logger *zap.Logger
}

func NewEngine(store TierSearcher, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Search resolves one page for a raw query. A blank query (before or after
// normalization) yields an empty terminal result. langFilter, when set,
// post-filters the fetched page by case-insensitive file name substring.
func (e *Engine) Search(ctx context.Context, rawQuery string, maxResults, offset int, langFilter string, selector model.Tier) Result {
	if strings.TrimSpace(rawQuery) == "" {
		return Result{}
	}

	query := Normalize(rawQuery)
	if query == "" {
		return Result{}
	}
	prefix := PrefixQuery(query)

	var (
		files []model.FileRecord
		total int64
	)

	if selector == model.TierAll {
		files, total = e.cascade(ctx, query, offset, maxResults)
		if len(files) == 0 && prefix != "" {
			files, total = e.cascade(ctx, prefix, 0, maxResults)
		}
	} else {
		tier := selector
		if !tier.IsStorage() {
			tier = model.TierPrimary
		}
		files, total = e.searchTier(ctx, tier, query, offset, maxResults)
		if len(files) == 0 && prefix != "" {
			files, total = e.searchTier(ctx, tier, prefix, 0, maxResults)
		}
	}

	if langFilter != "" && len(files) > 0 {
		lang := strings.ToLower(langFilter)
		filtered := files[:0]
		for _, f := range files {
			if strings.Contains(strings.ToLower(f.FileName), lang) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
		// The filter only sees the fetched page, so the count shrinks to it.
		total = int64(len(files))
	}

	res := Result{Files: files, Total: total}
	next := offset + maxResults
	if int64(next) < total {
		res.NextOffset = next
		res.HasMore = true
	}
	return res
}

// cascade walks the tiers in priority order and stops at the first tier with
// any match. Lower-priority tiers are never consulted once one hits.
func (e *Engine) cascade(ctx context.Context, query string, offset, limit int) ([]model.FileRecord, int64) {
	for _, tier := range model.Tiers() {
		files, total := e.searchTier(ctx, tier, query, offset, limit)
		if len(files) > 0 {
			return files, total
		}
	}
	return nil, 0
}

// searchTier swallows store errors into an empty result so one broken tier
// degrades to a miss instead of failing the whole search.
func (e *Engine) searchTier(ctx context.Context, tier model.Tier, query string, offset, limit int) ([]model.FileRecord, int64) {
	files, total, err := e.store.TextSearch(ctx, tier, query, offset, limit)
	if err != nil {
		e.logger.Error("tier search failed",
			zap.String("tier", string(tier)),
			zap.String("query", query),
			zap.Error(err))
		return nil, 0
	}
	return files, total
}
