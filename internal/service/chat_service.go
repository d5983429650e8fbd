package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
)

const chatHistoryLimit = 200

// ChatService 互相关注用户之间的私信
type ChatService interface {
	// OpenRoom 返回两人共同的房间，不存在时创建
	OpenRoom(ctx context.Context, userID, otherID string) (*model.Room, error)
	Send(ctx context.Context, userID, roomID, message string) (*model.Chat, error)
	Messages(ctx context.Context, userID, roomID string) ([]*model.Chat, error)
}

type chatService struct {
	rooms     repository.RoomRepository
	relations RelationshipService
}

func NewChatService(rooms repository.RoomRepository, relations RelationshipService) ChatService {
	return &chatService{rooms: rooms, relations: relations}
}

func (s *chatService) OpenRoom(ctx context.Context, userID, otherID string) (*model.Room, error) {
	mutual, err := s.relations.IsMutual(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return nil, ErrNotMutual
	}

	room, err := s.rooms.FindShared(ctx, userID, otherID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}
	return s.rooms.Create(ctx, userID, otherID)
}

func (s *chatService) member(ctx context.Context, userID, roomID string) error {
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRoomMember
	}
	return nil
}

func (s *chatService) Send(ctx context.Context, userID, roomID, message string) (*model.Chat, error) {
	if err := s.member(ctx, userID, roomID); err != nil {
		return nil, err
	}
	chat := &model.Chat{ID: uuid.New().String(), UserID: userID, RoomID: roomID, Message: message}
	if err := s.rooms.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *chatService) Messages(ctx context.Context, userID, roomID string) ([]*model.Chat, error) {
	if err := s.member(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return s.rooms.ListChats(ctx, roomID, chatHistoryLimit)
}
