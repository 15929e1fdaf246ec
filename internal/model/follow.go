package model

import "time"

// Follow 关注关系（A 关注 B），粉丝列表通过 followee_id 反查，不单独存储
type Follow struct {
	ID         uint `gorm:"primaryKey"`
	FollowerID uint `gorm:"not null;index:idx_follow_follower;uniqueIndex:ux_follow_pair"`
	FolloweeID uint `gorm:"not null;index:idx_follow_followee;uniqueIndex:ux_follow_pair"`
	// 复合唯一键，避免重复关注
	// ux_follow_pair = (follower_id, followee_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
