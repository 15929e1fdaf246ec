package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/pkg/logger"
)

// DrinkService 饮酒记录
type DrinkService interface {
	// AddDrink 在同一个事务内写 drink 并给所有粉丝扇出通知
	AddDrink(ctx context.Context, user *model.User, glasses int) (*model.Drink, error)
	ListMyDrinks(ctx context.Context, user *model.User) ([]model.Drink, error)
}

type drinkService struct {
	db        *gorm.DB
	drinkRepo repository.DrinkRepository
	fanout    *Fanout
	now       func() time.Time
}

func NewDrinkService(db *gorm.DB, drinkRepo repository.DrinkRepository, fanout *Fanout) DrinkService {
	return &drinkService{db: db, drinkRepo: drinkRepo, fanout: fanout, now: func() time.Time { return time.Now().UTC() }}
}

func (s *drinkService) AddDrink(ctx context.Context, user *model.User, glasses int) (*model.Drink, error) {
	if glasses < 1 {
		return nil, ErrInvalidGlasses
	}
	now := s.now()
	drink := &model.Drink{UserID: user.ID, Glasses: glasses, Datetime: now}
	var notified int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.drinkRepo.WithTx(tx).Create(ctx, drink); err != nil {
			return err
		}
		var err error
		notified, err = s.fanout.WithTx(tx).Notify(ctx, drink, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("drink logged",
		zap.Uint("user", user.ID),
		zap.Uint("drink", drink.ID),
		zap.Int("glasses", glasses),
		zap.Int("notified", notified),
	)
	return drink, nil
}

func (s *drinkService) ListMyDrinks(ctx context.Context, user *model.User) ([]model.Drink, error) {
	drinks, err := s.drinkRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if drinks == nil {
		drinks = []model.Drink{}
	}
	return drinks, nil
}
