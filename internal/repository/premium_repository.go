package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autofilter-bot/internal/model"
)

type PremiumRepository struct {
	db *gorm.DB
}

func NewPremiumRepository(db *gorm.DB) *PremiumRepository {
	return &PremiumRepository{db: db}
}

// GetPlan returns the user's subscription record, or a zero-value record when
// none exists yet. Records are only persisted on first mutation.
func (r *PremiumRepository) GetPlan(ctx context.Context, userID int64) (*model.PremiumRecord, error) {
	var rec model.PremiumRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.PremiumRecord{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get plan failed: %w", err)
	}
	return &rec, nil
}

// UpdatePlan upserts the record in a single statement; concurrent writers
// race with last-write-wins semantics, which the gate accepts.
func (r *PremiumRepository) UpdatePlan(ctx context.Context, rec *model.PremiumRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("update plan failed: %w", err)
	}
	return nil
}

// ListPremium returns every user currently flagged premium.
func (r *PremiumRepository) ListPremium(ctx context.Context) ([]model.PremiumRecord, error) {
	var recs []model.PremiumRecord
	if err := r.db.WithContext(ctx).Where("premium = ?", true).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list premium users failed: %w", err)
	}
	return recs, nil
}

func (r *PremiumRepository) CountPremium(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PremiumRecord{}).
		Where("premium = ?", true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count premium users failed: %w", err)
	}
	return n, nil
}
