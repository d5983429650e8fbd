package model

import (
	"time"
)

// DefaultProfileImage 未上传头像时返回的占位文件名
const DefaultProfileImage = "no_image.jpg"

// User 用户
// name 唯一且 2~20 字符；introduction 不超过 50 字符。
// 书、评论、收藏、浏览记录、聊天室成员关系、消息在删除用户时一并删除。
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string     `json:"name" gorm:"type:varchar(20);uniqueIndex;not null" validate:"min=2,max=20"`
	Introduction      string     `json:"introduction" gorm:"type:varchar(50)" validate:"max=50"`
	Email             string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null" validate:"required,email"`
	EncryptedPassword string     `json:"-" gorm:"type:varchar(255);not null"`
	RememberToken     string     `json:"-" gorm:"type:varchar(64)"`
	RememberCreatedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Books        []Book        `json:"-" gorm:"foreignKey:UserID"`
	BookComments []BookComment `json:"-" gorm:"foreignKey:UserID"`
	Favorites    []Favorite    `json:"-" gorm:"foreignKey:UserID"`
	ViewCounts   []ViewCount   `json:"-" gorm:"foreignKey:UserID"`
	UserRooms    []UserRoom    `json:"-" gorm:"foreignKey:UserID"`
	Chats        []Chat        `json:"-" gorm:"foreignKey:UserID"`
	// 我关注别人（follower_id = 自己）
	Relationships []Relationship `json:"-" gorm:"foreignKey:FollowerID"`
	// 别人关注我（followed_id = 自己）
	ReverseOfRelationships []Relationship `json:"-" gorm:"foreignKey:FollowedID"`
	ProfileImage           *Attachment    `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }
