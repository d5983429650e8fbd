package model

import (
	"fmt"

	"gorm.io/gorm"
)

// All 所有需要建表的模型，父表在前
func All() []interface{} {
	return []interface{}{
		&User{},
		&Relationship{},
		&Book{},
		&BookComment{},
		&Favorite{},
		&ViewCount{},
		&Room{},
		&UserRoom{},
		&Chat{},
		&Attachment{},
	}
}

// Migrate 自动建表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
