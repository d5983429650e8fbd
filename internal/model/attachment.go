package model

import "time"

// Attachment 用户头像附件的元信息，二进制内容存放在 blob 存储中
type Attachment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Key         string    `json:"key" gorm:"type:varchar(255);not null"`
	Filename    string    `json:"filename" gorm:"type:varchar(255)"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100)"`
	ByteSize    int64     `json:"byte_size"`
	Checksum    string    `json:"checksum" gorm:"type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }
