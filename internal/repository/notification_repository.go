package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/model"
)

// FeedRow 通知流一行：通知 + 对应的 drink 和喝酒的人
type FeedRow struct {
	DrinkerID        uint
	Username         string
	FirstName        string
	LastName         string
	IsAdmin          bool
	DrinkerCreatedAt time.Time
	Glasses          int
	Datetime         time.Time
}

type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	CreateBatch(ctx context.Context, records []model.DrinkNotification) error
	ListFeed(ctx context.Context, userID uint) ([]FeedRow, error)
	MarkAllReceived(ctx context.Context, userID uint) (int64, error)
	CountUnseen(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, batchSize: 500}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx, batchSize: r.batchSize}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, records []model.DrinkNotification) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&records, r.batchSize).Error
}

func (r *notificationRepository) ListFeed(ctx context.Context, userID uint) ([]FeedRow, error) {
	var rows []FeedRow
	err := r.db.WithContext(ctx).
		Table("drink_notifications AS n").
		Select(`u.id AS drinker_id, u.username, u.first_name, u.last_name, u.is_admin,
			u.created_at AS drinker_created_at, d.glasses, d.datetime`).
		Joins("JOIN drinks d ON d.id = n.drink_id").
		Joins("JOIN users u ON u.id = d.user_id").
		Where("n.user_id = ?", userID).
		Order("n.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *notificationRepository) MarkAllReceived(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.DrinkNotification{}).
		Where("user_id = ? AND received = ?", userID, false).
		Update("received", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnseen(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.DrinkNotification{}).
		Where("user_id = ? AND received = ?", userID, false).
		Count(&cnt).Error
	return cnt, err
}
