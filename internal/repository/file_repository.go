package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autofilter-bot/internal/model"
	"autofilter-bot/internal/search"
)

// SaveStatus reports the outcome of indexing a file.
type SaveStatus int

const (
	StatusFailed SaveStatus = iota
	StatusSaved
	StatusDuplicate
)

// WildcardQuery deletes every record in the selected tier(s) unconditionally.
const WildcardQuery = "*"

const matchExpr = "MATCH(file_name, caption) AGAINST (? IN NATURAL LANGUAGE MODE)"

var mentionRE = regexp.MustCompile(`@\w+`)

// FileRepository is the access layer over the three tier tables. Each tier is
// an independent FULLTEXT-indexed table; relevance ranking is delegated to
// MySQL natural language mode.
type FileRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFileRepository(db *gorm.DB, logger *zap.Logger) *FileRepository {
	return &FileRepository{db: db, logger: logger}
}

// Migrate creates the tier tables and their text indexes.
func (r *FileRepository) Migrate(ctx context.Context) error {
	for _, tier := range model.Tiers() {
		table := tier.TableName()
		if err := r.db.WithContext(ctx).Table(table).AutoMigrate(&model.FileRecord{}); err != nil {
			return fmt.Errorf("migrate %s failed: %w", table, err)
		}
		if err := r.ensureTextIndex(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileRepository) ensureTextIndex(ctx context.Context, table string) error {
	indexName := table + "_text"
	var count int64
	err := r.db.WithContext(ctx).Raw(
		"SELECT COUNT(1) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?",
		table, indexName,
	).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("check text index on %s failed: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	createStmt := fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s (file_name, caption)", indexName, table)
	if err := r.db.WithContext(ctx).Exec(createStmt).Error; err != nil {
		return fmt.Errorf("create text index on %s failed: %w", table, err)
	}
	return nil
}

// TextSearch runs a relevance-ranked query against one tier with skip/limit
// pagination. No matches is an empty result, not an error.
func (r *FileRepository) TextSearch(ctx context.Context, tier model.Tier, query string, offset, limit int) ([]model.FileRecord, int64, error) {
	if !tier.IsStorage() {
		tier = model.TierPrimary
	}

	var records []model.FileRecord
	err := r.db.WithContext(ctx).
		Table(tier.TableName()).
		Select("id, file_name, caption, file_size, "+matchExpr+" AS score", query).
		Where(matchExpr, query).
		Order("score DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("text search in %s failed: %w", tier, err)
	}

	var total int64
	err = r.db.WithContext(ctx).
		Table(tier.TableName()).
		Where(matchExpr, query).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count matches in %s failed: %w", tier, err)
	}

	return records, total, nil
}

// Save indexes a record into a tier, stripping @handle mentions from name and
// caption. Re-saving an existing ID reports StatusDuplicate, not an error.
func (r *FileRepository) Save(ctx context.Context, record *model.FileRecord, tier model.Tier) (SaveStatus, error) {
	if record.ID == "" {
		return StatusFailed, errors.New("file record has no id")
	}
	if !tier.IsStorage() {
		tier = model.TierPrimary
	}

	record.FileName = strings.TrimSpace(mentionRE.ReplaceAllString(record.FileName, ""))
	record.Caption = strings.TrimSpace(mentionRE.ReplaceAllString(record.Caption, ""))

	err := r.db.WithContext(ctx).Table(tier.TableName()).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return StatusDuplicate, nil
		}
		return StatusFailed, fmt.Errorf("save file to %s failed: %w", tier, err)
	}
	return StatusSaved, nil
}

// DeleteByQuery bulk-deletes matching records from the selected tier(s). The
// wildcard query wipes the selection unconditionally and is warn-logged.
func (r *FileRepository) DeleteByQuery(ctx context.Context, selector model.Tier, rawQuery string) (int64, error) {
	tiers := r.selectTiers(selector)

	if rawQuery == WildcardQuery {
		var deleted int64
		for _, tier := range tiers {
			res := r.db.WithContext(ctx).Exec("DELETE FROM " + tier.TableName())
			if res.Error != nil {
				return deleted, fmt.Errorf("wipe %s failed: %w", tier, res.Error)
			}
			deleted += res.RowsAffected
			r.logger.Warn("deleted all files from tier",
				zap.String("tier", string(tier)),
				zap.Int64("count", res.RowsAffected))
		}
		return deleted, nil
	}

	query := search.Normalize(rawQuery)
	if query == "" {
		return 0, errors.New("empty query after normalization")
	}

	var deleted int64
	for _, tier := range tiers {
		res := r.db.WithContext(ctx).
			Table(tier.TableName()).
			Where(matchExpr, query).
			Delete(&model.FileRecord{})
		if res.Error != nil {
			return deleted, fmt.Errorf("delete from %s failed: %w", tier, res.Error)
		}
		deleted += res.RowsAffected
		if res.RowsAffected > 0 {
			r.logger.Info("deleted files by query",
				zap.String("tier", string(tier)),
				zap.String("query", query),
				zap.Int64("count", res.RowsAffected))
		}
	}
	return deleted, nil
}

// Move transfers matching records between tiers, one record at a time:
// insert into the destination first, delete from the source after. A crash
// mid-move leaves a duplicate, never a lost record; a duplicate already in
// the destination counts as a successful move.
func (r *FileRepository) Move(ctx context.Context, rawQuery string, from, to model.Tier) (int64, error) {
	if !from.IsStorage() || !to.IsStorage() || from == to {
		return 0, fmt.Errorf("invalid move %s -> %s", from, to)
	}
	query := search.Normalize(rawQuery)
	if query == "" {
		return 0, errors.New("empty query after normalization")
	}

	var matches []model.FileRecord
	err := r.db.WithContext(ctx).
		Table(from.TableName()).
		Where(matchExpr, query).
		Find(&matches).Error
	if err != nil {
		return 0, fmt.Errorf("find files to move in %s failed: %w", from, err)
	}

	var moved int64
	for i := range matches {
		rec := matches[i]
		if err := r.db.WithContext(ctx).Table(to.TableName()).Create(&rec).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				r.logger.Error("move file failed",
					zap.String("file_id", rec.ID),
					zap.Error(err))
				continue
			}
		}
		if err := r.db.WithContext(ctx).
			Table(from.TableName()).
			Where("id = ?", rec.ID).
			Delete(&model.FileRecord{}).Error; err != nil {
			r.logger.Error("remove moved file from source failed",
				zap.String("file_id", rec.ID),
				zap.Error(err))
			continue
		}
		moved++
	}

	if moved > 0 {
		r.logger.Info("moved files between tiers",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("query", query),
			zap.Int64("count", moved))
	}
	return moved, nil
}

// TierCounts holds cheap per-tier cardinalities plus the sum.
type TierCounts struct {
	Primary int64 `json:"primary"`
	Cloud   int64 `json:"cloud"`
	Archive int64 `json:"archive"`
	Total   int64 `json:"total"`
}

// CountAll returns approximate record counts per tier.
func (r *FileRepository) CountAll(ctx context.Context) (TierCounts, error) {
	var counts TierCounts
	for _, tier := range model.Tiers() {
		var n int64
		if err := r.db.WithContext(ctx).Table(tier.TableName()).Count(&n).Error; err != nil {
			return counts, fmt.Errorf("count %s failed: %w", tier, err)
		}
		switch tier {
		case model.TierPrimary:
			counts.Primary = n
		case model.TierCloud:
			counts.Cloud = n
		case model.TierArchive:
			counts.Archive = n
		}
		counts.Total += n
	}
	return counts, nil
}

// GetByID looks a file up across tiers in priority order. A missing file is
// (nil, nil).
func (r *FileRepository) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	for _, tier := range model.Tiers() {
		var rec model.FileRecord
		err := r.db.WithContext(ctx).
			Table(tier.TableName()).
			Where("id = ?", id).
			Take(&rec).Error
		if err == nil {
			return &rec, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("get file from %s failed: %w", tier, err)
		}
	}
	return nil, nil
}

// ListByTier pages through one tier in index order.
func (r *FileRepository) ListByTier(ctx context.Context, tier model.Tier, offset, limit int) ([]model.FileRecord, error) {
	if !tier.IsStorage() {
		tier = model.TierPrimary
	}
	var records []model.FileRecord
	err := r.db.WithContext(ctx).
		Table(tier.TableName()).
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list files in %s failed: %w", tier, err)
	}
	return records, nil
}

func (r *FileRepository) selectTiers(selector model.Tier) []model.Tier {
	if selector == model.TierAll {
		return model.Tiers()
	}
	if !selector.IsStorage() {
		return []model.Tier{model.TierPrimary}
	}
	return []model.Tier{selector}
}
