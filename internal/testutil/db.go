// Package testutil 测试用的内存数据库与种子数据
package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/pkg/database"
)

// NewDB 每个测试独立的 sqlite 内存库，单连接保证事务内外看到同一个库
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUsers 按用户名创建用户，返回顺序与入参一致
func SeedUsers(tb testing.TB, db *gorm.DB, usernames ...string) []*model.User {
	tb.Helper()
	out := make([]*model.User, 0, len(usernames))
	for _, name := range usernames {
		u := &model.User{Username: name, FirstName: name, LastName: "Test", HashedPassword: "x"}
		if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
			tb.Fatalf("seed user %s: %v", name, err)
		}
		out = append(out, u)
	}
	return out
}

// SeedNumberedUsers 创建 prefix0000..prefixN-1
func SeedNumberedUsers(tb testing.TB, db *gorm.DB, prefix string, n int) []model.User {
	tb.Helper()
	users := make([]model.User, n)
	for i := range users {
		name := fmt.Sprintf("%s%04d", prefix, i)
		users[i] = model.User{Username: name, FirstName: name, HashedPassword: "x"}
	}
	if n == 0 {
		return users
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		tb.Fatalf("seed users: %v", err)
	}
	return users
}
