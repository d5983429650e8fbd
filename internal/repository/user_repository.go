package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookers/internal/model"
)

// SearchMode 用户名检索方式
type SearchMode string

const (
	SearchPerfectMatch  SearchMode = "perfect_match"  // 完全一致
	SearchForwardMatch  SearchMode = "forward_match"  // 前方一致
	SearchBackwardMatch SearchMode = "backward_match" // 后方一致
	SearchPartialMatch  SearchMode = "partial_match"  // 部分一致
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 校验后创建用户
	Create(ctx context.Context, user *model.User) error

	// Update 更新 name / introduction
	Update(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Delete 删除用户及其所有从属记录
	Delete(ctx context.Context, id string) error

	// Search 按检索方式匹配 name，未知方式返回全部用户
	Search(ctx context.Context, mode SearchMode, word string) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := model.Validate(user); err != nil {
		return err
	}
	if err := r.checkUnique(ctx, user); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := model.Validate(user); err != nil {
		return err
	}
	if err := r.checkUnique(ctx, user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":         user.Name,
			"introduction": user.Introduction,
			"updated_at":   user.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// checkUnique name、email 唯一性校验（排除自身）
func (r *userRepository) checkUnique(ctx context.Context, user *model.User) error {
	exists := func(column, value string) (bool, error) {
		var cnt int64
		q := r.db.WithContext(ctx).Model(&model.User{}).Where(column+" = ?", value)
		if user.ID != "" {
			q = q.Where("id <> ?", user.ID)
		}
		if err := q.Count(&cnt).Error; err != nil {
			return false, err
		}
		return cnt > 0, nil
	}

	taken, err := exists("name", user.Name)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}
	taken, err = exists("email", user.Email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 自己发布的书下面的评论、收藏、浏览记录
		ownBooks := tx.Model(&model.Book{}).Select("id").Where("user_id = ?", id)
		for _, m := range []interface{}{&model.BookComment{}, &model.Favorite{}, &model.ViewCount{}} {
			if err := tx.Where("book_id IN (?)", ownBooks).Delete(m).Error; err != nil {
				return fmt.Errorf("delete dependents of books: %w", err)
			}
		}

		owned := []interface{}{
			&model.BookComment{},
			&model.Favorite{},
			&model.ViewCount{},
			&model.Book{},
			&model.Chat{},
			&model.UserRoom{},
			&model.Attachment{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("delete %T: %w", m, err)
			}
		}

		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).
			Delete(&model.Relationship{}).Error; err != nil {
			return fmt.Errorf("delete relationships: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *userRepository) Search(ctx context.Context, mode SearchMode, word string) ([]*model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	escaped := likeEscaper.Replace(word)
	switch mode {
	case SearchPerfectMatch:
		q = q.Where(`name LIKE ? ESCAPE '\'`, escaped)
	case SearchForwardMatch:
		q = q.Where(`name LIKE ? ESCAPE '\'`, escaped+"%")
	case SearchBackwardMatch:
		q = q.Where(`name LIKE ? ESCAPE '\'`, "%"+escaped)
	case SearchPartialMatch:
		q = q.Where(`name LIKE ? ESCAPE '\'`, "%"+escaped+"%")
	}

	var users []*model.User
	if err := q.Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
