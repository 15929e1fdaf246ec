package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/model"
)

type DrinkRepository interface {
	WithTx(tx *gorm.DB) DrinkRepository
	Create(ctx context.Context, drink *model.Drink) error
	ListByUser(ctx context.Context, userID uint) ([]model.Drink, error)
}

type drinkRepository struct{ db *gorm.DB }

func NewDrinkRepository(db *gorm.DB) DrinkRepository { return &drinkRepository{db: db} }

func (r *drinkRepository) WithTx(tx *gorm.DB) DrinkRepository { return &drinkRepository{db: tx} }

func (r *drinkRepository) Create(ctx context.Context, drink *model.Drink) error {
	return r.db.WithContext(ctx).Create(drink).Error
}

func (r *drinkRepository) ListByUser(ctx context.Context, userID uint) ([]model.Drink, error) {
	var res []model.Drink
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&res).Error
	return res, err
}
