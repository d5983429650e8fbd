package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/auth"
	"github.com/d60-Lab/bookers/pkg/logger"
	"github.com/d60-Lab/bookers/pkg/storage"
)

const minPasswordLength = 6

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Introduction string
}

// UpdateProfileInput nil 字段保持不变
type UpdateProfileInput struct {
	Name         *string
	Introduction *string
}

// UserService 账户服务
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login 校验邮箱密码并签发访问令牌
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, mode, word string) ([]*model.User, error)
}

type userService struct {
	users       repository.UserRepository
	attachments repository.AttachmentRepository
	blobs       *storage.Store
	tokens      *auth.TokenManager
}

func NewUserService(users repository.UserRepository, attachments repository.AttachmentRepository, blobs *storage.Store, tokens *auth.TokenManager) UserService {
	return &userService{users: users, attachments: attachments, blobs: blobs, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password is too short (minimum is %d characters)", model.ErrInvalid, minPasswordLength)
	}
	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		Introduction:      in.Introduction,
		EncryptedPassword: digest,
		RememberToken:     uuid.New().String(),
		RememberCreatedAt: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("user registered", zap.String("user", user.ID), zap.String("name", user.Name))
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := auth.CheckPassword(user.EncryptedPassword, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Introduction != nil {
		user.Introduction = *in.Introduction
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	att, err := s.attachments.GetByUser(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrAttachmentNotFound) {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if att != nil && s.blobs != nil {
		if err := s.blobs.Delete(att.Key); err != nil {
			logger.Warn("delete profile image blob failed", zap.String("key", att.Key), zap.Error(err))
		}
	}
	logger.Info("user deleted", zap.String("user", id))
	return nil
}

func (s *userService) Search(ctx context.Context, mode, word string) ([]*model.User, error) {
	return s.users.Search(ctx, repository.SearchMode(mode), word)
}
