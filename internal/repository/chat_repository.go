package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autofilter-bot/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// EnsureChat registers a group chat on first contact.
func (r *ChatRepository) EnsureChat(ctx context.Context, id int64, title string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Chat{ID: id, Title: title})
	if res.Error != nil {
		return false, fmt.Errorf("ensure chat failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ChatRepository) Disable(ctx context.Context, id int64, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"disabled": true, "reason": reason}).Error
	if err != nil {
		return fmt.Errorf("disable chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Chat{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chats failed: %w", err)
	}
	return n, nil
}
