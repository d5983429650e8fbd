package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/logger"
	"github.com/d60-Lab/bookers/pkg/storage"
)

// MaxProfileImageSize 头像大小上限
const MaxProfileImageSize = 5 << 20

// sniffLen 识别文件类型时读取的头部字节数
const sniffLen = 3072

type ProfileImageService interface {
	// Attach 保存头像并替换旧头像
	Attach(ctx context.Context, userID, filename string, r io.Reader) (*model.Attachment, error)
	// ProfileImage 返回头像地址，未上传时返回 model.DefaultProfileImage
	ProfileImage(ctx context.Context, userID string) (string, error)
	Remove(ctx context.Context, userID string) error
}

type profileImageService struct {
	users       repository.UserRepository
	attachments repository.AttachmentRepository
	blobs       *storage.Store
}

func NewProfileImageService(users repository.UserRepository, attachments repository.AttachmentRepository, blobs *storage.Store) ProfileImageService {
	return &profileImageService{users: users, attachments: attachments, blobs: blobs}
}

func (s *profileImageService) Attach(ctx context.Context, userID, filename string, r io.Reader) (*model.Attachment, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}

	key := fmt.Sprintf("profile_images/%s/%s%s", userID, uuid.New().String(), mt.Extension())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), MaxProfileImageSize+1)
	blob, err := s.blobs.Put(key, body)
	if err != nil {
		return nil, err
	}
	if blob.Size > MaxProfileImageSize {
		s.deleteBlob(key)
		return nil, ErrImageTooLarge
	}

	att := &model.Attachment{
		ID:          uuid.New().String(),
		UserID:      userID,
		Key:         key,
		Filename:    filename,
		ContentType: mt.String(),
		ByteSize:    blob.Size,
		Checksum:    blob.Checksum,
	}
	old, err := s.attachments.Replace(ctx, att)
	if err != nil {
		s.deleteBlob(key)
		return nil, err
	}
	if old != nil {
		s.deleteBlob(old.Key)
	}
	logger.Info("profile image attached", zap.String("user", userID), zap.String("key", key), zap.Int64("size", blob.Size))
	return att, nil
}

func (s *profileImageService) ProfileImage(ctx context.Context, userID string) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}
	att, err := s.attachments.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrAttachmentNotFound) {
		return model.DefaultProfileImage, nil
	}
	if err != nil {
		return "", err
	}
	return s.blobs.URL(att.Key), nil
}

func (s *profileImageService) Remove(ctx context.Context, userID string) error {
	att, err := s.attachments.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.attachments.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.deleteBlob(att.Key)
	return nil
}

func (s *profileImageService) deleteBlob(key string) {
	if err := s.blobs.Delete(key); err != nil {
		logger.Warn("delete blob failed", zap.String("key", key), zap.Error(err))
	}
}
