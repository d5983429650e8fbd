package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookers/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.BookComment) error
	GetByID(ctx context.Context, id string) (*model.BookComment, error)
	Delete(ctx context.Context, id string) error
	ListByBook(ctx context.Context, bookID string) ([]*model.BookComment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.BookComment) error {
	if err := model.Validate(comment); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.BookComment, error) {
	var c model.BookComment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BookComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) ListByBook(ctx context.Context, bookID string) ([]*model.BookComment, error) {
	var res []*model.BookComment
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("created_at").Find(&res).Error
	return res, err
}
