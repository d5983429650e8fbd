package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/bookers/internal/model"
)

// RoomRepository 私信房间与消息
type RoomRepository interface {
	// Create 在一个事务内创建房间与成员；两人房间已存在时返回已有房间
	Create(ctx context.Context, memberIDs ...string) (*model.Room, error)
	// FindShared 查找两人共同所在的房间
	FindShared(ctx context.Context, userID, otherID string) (*model.Room, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	CreateChat(ctx context.Context, chat *model.Chat) error
	ListChats(ctx context.Context, roomID string, limit int) ([]*model.Chat, error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository { return &roomRepository{db: db} }

// pairKey 两人房间与成员顺序无关的唯一键
func pairKey(memberIDs []string) *string {
	if len(memberIDs) != 2 || memberIDs[0] == memberIDs[1] {
		return nil
	}
	ids := append([]string(nil), memberIDs...)
	sort.Strings(ids)
	k := strings.Join(ids, ":")
	return &k
}

func (r *roomRepository) Create(ctx context.Context, memberIDs ...string) (*model.Room, error) {
	room := &model.Room{ID: uuid.New().String(), PairKey: pairKey(memberIDs), CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(room)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发请求已为这两人建好房间
			var existing model.Room
			if err := tx.Where("pair_key = ?", *room.PairKey).First(&existing).Error; err != nil {
				return err
			}
			*room = existing
			return nil
		}
		members := make([]model.UserRoom, 0, len(memberIDs))
		for _, uid := range memberIDs {
			members = append(members, model.UserRoom{ID: uuid.New().String(), UserID: uid, RoomID: room.ID})
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) FindShared(ctx context.Context, userID, otherID string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Model(&model.Room{}).
		Joins("JOIN user_rooms a ON a.room_id = rooms.id AND a.user_id = ?", userID).
		Joins("JOIN user_rooms b ON b.room_id = rooms.id AND b.user_id = ?", otherID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.UserRoom{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *roomRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	if err := model.Validate(chat); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *roomRepository) ListChats(ctx context.Context, roomID string, limit int) ([]*model.Chat, error) {
	var chats []*model.Chat
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at").
		Limit(limit).
		Find(&chats).Error
	return chats, err
}
