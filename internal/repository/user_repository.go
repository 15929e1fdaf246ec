package repository

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/model"
)

// UserRepository 用户仓储，查不到时返回 (nil, nil)
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateAdmin(ctx context.Context, id uint, isAdmin bool) error
	// Delete 连同关注关系、饮酒记录、通知一起删除；不存在时不报错
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	SearchByPrefix(ctx context.Context, prefix string, excludeID uint, offset, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository { return &userRepository{db: tx} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_admin", isAdmin).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drinkIDs := tx.Model(&model.Drink{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("user_id = ? OR drink_id IN (?)", id, drinkIDs).
			Delete(&model.DrinkNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Drink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&cnt).Error
	return cnt, err
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	var res []model.User
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *userRepository) SearchByPrefix(ctx context.Context, prefix string, excludeID uint, offset, limit int) ([]model.User, error) {
	var res []model.User
	err := r.db.WithContext(ctx).
		Where(`username LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		// sqlite 的 LIKE 不区分大小写，substr 按字符比较，两种驱动一致
		Where("substr(username, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Where("id <> ?", excludeID).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
