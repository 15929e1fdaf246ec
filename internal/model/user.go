package model

import "time"

// User 用户
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	FirstName      string    `json:"first_name" gorm:"type:varchar(64)"`
	LastName       string    `json:"last_name" gorm:"type:varchar(64)"`
	HashedPassword string    `json:"-" gorm:"type:varchar(255);not null"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`

	// Following 由 follows 表加载，不是列
	Following []User `json:"following,omitempty" gorm:"-"`
}

func (User) TableName() string { return "users" }

// All 需要迁移的模型
func All() []interface{} {
	return []interface{}{&User{}, &Follow{}, &Drink{}, &DrinkNotification{}}
}
