package service

import (
    "context"
    "errors"

    "go.uber.org/zap"

    "github.com/d60-Lab/bookers/internal/cache"
    "github.com/d60-Lab/bookers/internal/model"
    "github.com/d60-Lab/bookers/internal/repository"
    "github.com/d60-Lab/bookers/pkg/logger"
)

// FollowStats 关注数/粉丝数
type FollowStats struct {
    Followings int64 `json:"followings"`
    Followers  int64 `json:"followers"`
}

// RelationshipService 关系链服务
type RelationshipService interface {
    Follow(ctx context.Context, fromUserID, toUserID string) error
    Unfollow(ctx context.Context, fromUserID, toUserID string) error
    IsFollowing(ctx context.Context, userID, otherID string) (bool, error)
    // IsMutual 两人互相关注
    IsMutual(ctx context.Context, userID, otherID string) (bool, error)
    ListFollowings(ctx context.Context, userID string, page, pageSize int) ([]*model.User, error)
    ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]*model.User, error)
    Stats(ctx context.Context, userID string) (*FollowStats, error)
}

type relationshipService struct {
    relRepo  repository.RelationshipRepository
    userRepo repository.UserRepository
    cache    *cache.FollowingsCache
}

// NewRelationshipService cache 可以为 nil，此时直接查库
func NewRelationshipService(relRepo repository.RelationshipRepository, userRepo repository.UserRepository, c *cache.FollowingsCache) RelationshipService {
    return &relationshipService{relRepo: relRepo, userRepo: userRepo, cache: c}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
    if fromUserID == toUserID {
        return ErrFollowSelf
    }
    // 双方都必须存在，已注销用户的令牌不能再写入关系
    for _, id := range []string{fromUserID, toUserID} {
        if _, err := s.userRepo.GetByID(ctx, id); err != nil {
            return err
        }
    }
    if err := s.relRepo.Create(ctx, fromUserID, toUserID); err != nil {
        return err
    }
    s.invalidate(ctx, fromUserID)
    logger.Info("follow", zap.String("from", fromUserID), zap.String("to", toUserID))
    return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
    if err := s.relRepo.Delete(ctx, fromUserID, toUserID); err != nil {
        return err
    }
    s.invalidate(ctx, fromUserID)
    logger.Info("unfollow", zap.String("from", fromUserID), zap.String("to", toUserID))
    return nil
}

func (s *relationshipService) invalidate(ctx context.Context, userID string) {
    if s.cache == nil {
        return
    }
    if err := s.cache.Invalidate(ctx, userID); err != nil {
        logger.Warn("invalidate followings cache failed", zap.String("user", userID), zap.Error(err))
    }
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, otherID string) (bool, error) {
    if s.cache != nil {
        ok, err := s.cache.IsFollowing(ctx, userID, otherID, func(ctx context.Context) ([]string, error) {
            return s.relRepo.FollowingIDs(ctx, userID)
        })
        if err == nil {
            return ok, nil
        }
        // 回填被并发的关注变更打断，或缓存不可用时，回退到主库
        if !errors.Is(err, cache.ErrStaleFill) {
            logger.Warn("followings cache unavailable", zap.String("user", userID), zap.Error(err))
        }
    }
    return s.relRepo.Exists(ctx, userID, otherID)
}

func (s *relationshipService) IsMutual(ctx context.Context, userID, otherID string) (bool, error) {
    if userID == otherID {
        return false, nil
    }
    ok, err := s.IsFollowing(ctx, userID, otherID)
    if err != nil || !ok {
        return false, err
    }
    return s.IsFollowing(ctx, otherID, userID)
}

func (s *relationshipService) ListFollowings(ctx context.Context, userID string, page, pageSize int) ([]*model.User, error) {
    if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
        return nil, err
    }
    offset, limit := pageOffset(page, pageSize)
    return s.relRepo.ListFollowings(ctx, userID, offset, limit)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]*model.User, error) {
    if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
        return nil, err
    }
    offset, limit := pageOffset(page, pageSize)
    return s.relRepo.ListFollowers(ctx, userID, offset, limit)
}

func (s *relationshipService) Stats(ctx context.Context, userID string) (*FollowStats, error) {
    followings, err := s.relRepo.CountFollowings(ctx, userID)
    if err != nil {
        return nil, err
    }
    followers, err := s.relRepo.CountFollowers(ctx, userID)
    if err != nil {
        return nil, err
    }
    return &FollowStats{Followings: followings, Followers: followers}, nil
}
