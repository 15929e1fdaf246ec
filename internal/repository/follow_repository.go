package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/drink-tracker/internal/model"
)

type FollowRepository interface {
	WithTx(tx *gorm.DB) FollowRepository
	// Create 返回 false 表示关系已存在
	Create(ctx context.Context, followerID, followeeID uint) (bool, error)
	// Delete 返回 false 表示关系不存在
	Delete(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowerIDs(ctx context.Context, followeeID uint) ([]uint, error)
	// ListFolloweeIDs 用户关注的人，用于失效他们的粉丝缓存
	ListFolloweeIDs(ctx context.Context, followerID uint) ([]uint, error)
	ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]model.User, error)
	ListFollowing(ctx context.Context, followerID uint) ([]model.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository { return &followRepository{db: tx} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID uint) (bool, error) {
	f := &model.Follow{FollowerID: followerID, FolloweeID: followeeID}
	// 并发重复关注由唯一索引兜底
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) ListFolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Order("followee_id ASC").
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowerIDs(ctx context.Context, followeeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followee_id = ?", followeeID).
		Order("follower_id ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]model.User, error) {
	var res []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", followeeID).
		Order("users.id ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID uint) ([]model.User, error) {
	var res []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", followerID).
		Order("users.id ASC").
		Find(&res).Error
	return res, err
}
