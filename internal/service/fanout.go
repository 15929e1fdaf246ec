package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
)

// Fanout 给 drink 作者的当前粉丝各写一条通知。
// 必须在写 drink 的同一事务里调用，粉丝为零时不写任何行。
type Fanout struct {
	followRepo repository.FollowRepository
	notifRepo  repository.NotificationRepository
}

func NewFanout(followRepo repository.FollowRepository, notifRepo repository.NotificationRepository) *Fanout {
	return &Fanout{followRepo: followRepo, notifRepo: notifRepo}
}

func (f *Fanout) WithTx(tx *gorm.DB) *Fanout {
	return &Fanout{followRepo: f.followRepo.WithTx(tx), notifRepo: f.notifRepo.WithTx(tx)}
}

// Notify 返回写入的通知数
func (f *Fanout) Notify(ctx context.Context, drink *model.Drink, at time.Time) (int, error) {
	fans, err := f.followRepo.ListFollowerIDs(ctx, drink.UserID)
	if err != nil {
		return 0, err
	}
	if len(fans) == 0 {
		return 0, nil
	}
	records := make([]model.DrinkNotification, 0, len(fans))
	for _, fanID := range fans {
		records = append(records, model.DrinkNotification{UserID: fanID, DrinkID: drink.ID, Datetime: at})
	}
	if err := f.notifRepo.CreateBatch(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
