package model

import (
    "time"
)

// Relationship 关注关系（Follower 关注 Followed），有向边
type Relationship struct {
    ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
    FollowerID string    `json:"follower_id" gorm:"type:varchar(36);index:idx_rel_follower;index:idx_rel_pair,unique;not null"`
    FollowedID string    `json:"followed_id" gorm:"type:varchar(36);index:idx_rel_followed;index:idx_rel_pair,unique;not null"`
    // 复合唯一键，重复关注只保留一条
    // idx_rel_pair = (follower_id, followed_id)
    CreatedAt  time.Time `json:"created_at"`
    UpdatedAt  time.Time `json:"updated_at"`
}

func (Relationship) TableName() string { return "relationships" }
