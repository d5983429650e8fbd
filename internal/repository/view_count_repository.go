package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookers/internal/model"
)

type ViewCountRepository interface {
	Create(ctx context.Context, userID, bookID string) error
	CountByBook(ctx context.Context, bookID string) (int64, error)
}

type viewCountRepository struct{ db *gorm.DB }

func NewViewCountRepository(db *gorm.DB) ViewCountRepository { return &viewCountRepository{db: db} }

func (r *viewCountRepository) Create(ctx context.Context, userID, bookID string) error {
	v := &model.ViewCount{ID: uuid.New().String(), UserID: userID, BookID: bookID}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *viewCountRepository) CountByBook(ctx context.Context, bookID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.ViewCount{}).Where("book_id = ?", bookID).Count(&cnt).Error
	return cnt, err
}
