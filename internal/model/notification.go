package model

import "time"

// DrinkNotification 关注的人喝酒时发给粉丝的通知
type DrinkNotification struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"not null;index:idx_notification_user;uniqueIndex:ux_notification_user_drink"`
	DrinkID  uint      `gorm:"not null;index:idx_notification_drink;uniqueIndex:ux_notification_user_drink"`
	Received bool      `gorm:"not null;default:false"`
	Datetime time.Time `gorm:"column:datetime;not null"`
	// 复合唯一键，同一条 drink 对同一粉丝只通知一次
	// ux_notification_user_drink = (user_id, drink_id)
}

func (DrinkNotification) TableName() string { return "drink_notifications" }
