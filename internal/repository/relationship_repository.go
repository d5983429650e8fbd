package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/d60-Lab/bookers/internal/model"
)

type RelationshipRepository interface {
    Create(ctx context.Context, followerID, followedID string) error
    Delete(ctx context.Context, followerID, followedID string) error
    Exists(ctx context.Context, followerID, followedID string) (bool, error)
    // ListFollowings 我关注的用户，按关注时间倒序
    ListFollowings(ctx context.Context, userID string, offset, limit int) ([]*model.User, error)
    // ListFollowers 关注我的用户，按关注时间倒序
    ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*model.User, error)
    FollowingIDs(ctx context.Context, userID string) ([]string, error)
    CountFollowings(ctx context.Context, userID string) (int64, error)
    CountFollowers(ctx context.Context, userID string) (int64, error)
}

type relationshipRepository struct {
    db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
    return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(ctx context.Context, followerID, followedID string) error {
    rel := &model.Relationship{ID: uuid.New().String(), FollowerID: followerID, FollowedID: followedID}
    // 幂等：重复关注不报错
    return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rel).Error
}

func (r *relationshipRepository) Delete(ctx context.Context, followerID, followedID string) error {
    res := r.db.WithContext(ctx).
        Where("follower_id = ? AND followed_id = ?", followerID, followedID).
        Delete(&model.Relationship{})
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrRelationshipNotFound
    }
    return nil
}

func (r *relationshipRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
    var cnt int64
    if err := r.db.WithContext(ctx).
        Model(&model.Relationship{}).
        Where("follower_id = ? AND followed_id = ?", followerID, followedID).
        Count(&cnt).Error; err != nil {
        return false, err
    }
    return cnt > 0, nil
}

func (r *relationshipRepository) ListFollowings(ctx context.Context, userID string, offset, limit int) ([]*model.User, error) {
    return r.listUsers(ctx, "relationships.followed_id = users.id", "relationships.follower_id = ?", userID, offset, limit)
}

func (r *relationshipRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*model.User, error) {
    return r.listUsers(ctx, "relationships.follower_id = users.id", "relationships.followed_id = ?", userID, offset, limit)
}

func (r *relationshipRepository) listUsers(ctx context.Context, on, where, userID string, offset, limit int) ([]*model.User, error) {
    var res []*model.User
    err := r.db.WithContext(ctx).
        Model(&model.User{}).
        Joins("JOIN relationships ON "+on).
        Where(where, userID).
        Order("relationships.created_at DESC").
        Offset(offset).
        Limit(limit).
        Find(&res).Error
    return res, err
}

func (r *relationshipRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
    var ids []string
    err := r.db.WithContext(ctx).
        Model(&model.Relationship{}).
        Where("follower_id = ?", userID).
        Pluck("followed_id", &ids).Error
    return ids, err
}

func (r *relationshipRepository) CountFollowings(ctx context.Context, userID string) (int64, error) {
    return r.count(ctx, "follower_id = ?", userID)
}

func (r *relationshipRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
    return r.count(ctx, "followed_id = ?", userID)
}

func (r *relationshipRepository) count(ctx context.Context, where, userID string) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).Model(&model.Relationship{}).Where(where, userID).Count(&cnt).Error
    return cnt, err
}
