// Package testutil 测试辅助：内存 SQLite 与样例数据
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/bookers/internal/model"
)

// NewDB 打开一个已建表的内存数据库。
// :memory: 每个连接是独立的库，因此连接池限制为 1。
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := model.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser 直接落库一个用户，跳过注册流程
func CreateUser(tb testing.TB, db *gorm.DB, name string) *model.User {
	tb.Helper()
	u := &model.User{
		ID:                uuid.New().String(),
		Name:              name,
		Email:             fmt.Sprintf("%s@example.com", name),
		EncryptedPassword: "x",
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// Follow 直接写入一条关注关系
func Follow(tb testing.TB, db *gorm.DB, followerID, followedID string) {
	tb.Helper()
	rel := &model.Relationship{ID: uuid.New().String(), FollowerID: followerID, FollowedID: followedID}
	if err := db.Create(rel).Error; err != nil {
		tb.Fatalf("follow: %v", err)
	}
}

// Count 统计表行数
func Count(tb testing.TB, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	tb.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
