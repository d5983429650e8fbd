package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/d60-Lab/bookers/internal/model"
)

type FavoriteRepository interface {
    Create(ctx context.Context, userID, bookID string) error
    Delete(ctx context.Context, userID, bookID string) error
    Exists(ctx context.Context, userID, bookID string) (bool, error)
    CountByBook(ctx context.Context, bookID string) (int64, error)
}

type favoriteRepository struct{ db *gorm.DB }

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository { return &favoriteRepository{db: db} }

func (r *favoriteRepository) Create(ctx context.Context, userID, bookID string) error {
    f := &model.Favorite{ID: uuid.New().String(), UserID: userID, BookID: bookID}
    return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, bookID string) error {
    res := r.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&model.Favorite{})
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrFavoriteNotFound
    }
    return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
    var cnt int64
    err := r.db.WithContext(ctx).Model(&model.Favorite{}).Where("user_id = ? AND book_id = ?", userID, bookID).Count(&cnt).Error
    return cnt > 0, err
}

func (r *favoriteRepository) CountByBook(ctx context.Context, bookID string) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).Model(&model.Favorite{}).Where("book_id = ?", bookID).Count(&cnt).Error
    return cnt, err
}
