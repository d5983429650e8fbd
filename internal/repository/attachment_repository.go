package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookers/internal/model"
)

type AttachmentRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Attachment, error)
	// Replace 替换用户的附件，返回被替换掉的旧记录（可能为 nil）
	Replace(ctx context.Context, att *model.Attachment) (*model.Attachment, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type attachmentRepository struct{ db *gorm.DB }

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) GetByUser(ctx context.Context, userID string) (*model.Attachment, error) {
	var att model.Attachment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) Replace(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	var old *model.Attachment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Attachment
		err := tx.Where("user_id = ?", att.UserID).First(&existing).Error
		switch {
		case err == nil:
			old = &existing
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(att).Error
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}

func (r *attachmentRepository) DeleteByUser(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
