package model

import "time"

// Room 私信房间，仅限互相关注的用户
type Room struct {
	ID string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	// PairKey 两人房间的有序成员对 "<小ID>:<大ID>"，唯一索引保证同一对用户只有一个房间
	PairKey   *string   `json:"-" gorm:"type:varchar(80);uniqueIndex:idx_room_pair"`
	CreatedAt time.Time `json:"created_at"`

	UserRooms []UserRoom `json:"-" gorm:"foreignKey:RoomID"`
	Chats     []Chat     `json:"-" gorm:"foreignKey:RoomID"`
}

func (Room) TableName() string { return "rooms" }

// UserRoom 房间成员
type UserRoom struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_user_room_pair,unique;not null"`
	RoomID    string    `json:"room_id" gorm:"type:varchar(36);index:idx_user_room_room;index:idx_user_room_pair,unique;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRoom) TableName() string { return "user_rooms" }

// Chat 房间内的一条消息
type Chat struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_chat_user;not null"`
	RoomID    string    `json:"room_id" gorm:"type:varchar(36);index:idx_chat_room_created;not null"`
	Message   string    `json:"message" gorm:"type:varchar(140);not null" validate:"required,max=140"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_room_created"`
}

func (Chat) TableName() string { return "chats" }
