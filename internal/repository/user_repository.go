package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autofilter-bot/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureUser registers a user on first contact. Returns true when the user
// was newly created.
func (r *UserRepository) EnsureUser(ctx context.Context, id int64, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.User{ID: id, Name: name})
	if res.Error != nil {
		return false, fmt.Errorf("ensure user failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) Ban(ctx context.Context, id int64, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"banned": true, "ban_reason": reason}).Error
	if err != nil {
		return fmt.Errorf("ban user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) Unban(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"banned": false, "ban_reason": ""}).Error
	if err != nil {
		return fmt.Errorf("unban user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) IsBanned(ctx context.Context, id int64) (bool, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user failed: %w", err)
	}
	return user.Banned, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users failed: %w", err)
	}
	return n, nil
}
