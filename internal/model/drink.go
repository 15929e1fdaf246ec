package model

import "time"

// Drink 一次饮酒记录，创建后不可变
type Drink struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;index:idx_drink_user"`
	Glasses  int       `json:"glasses" gorm:"not null"`
	Datetime time.Time `json:"datetime" gorm:"column:datetime;not null"`
}

func (Drink) TableName() string { return "drinks" }
