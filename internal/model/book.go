package model

import "time"

// Book 用户发布的书籍感想
type Book struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_book_user;not null"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Body      string    `json:"body" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BookComments []BookComment `json:"-" gorm:"foreignKey:BookID"`
	Favorites    []Favorite    `json:"-" gorm:"foreignKey:BookID"`
	ViewCounts   []ViewCount   `json:"-" gorm:"foreignKey:BookID"`
}

func (Book) TableName() string { return "books" }

// BookComment 书籍评论
type BookComment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_comment_user;not null"`
	BookID    string    `json:"book_id" gorm:"type:varchar(36);index:idx_comment_book;not null"`
	Comment   string    `json:"comment" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BookComment) TableName() string { return "book_comments" }

// Favorite 收藏（每个用户对同一本书最多一条）
type Favorite struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_fav_pair,unique;not null"`
	BookID    string    `json:"book_id" gorm:"type:varchar(36);index:idx_fav_book;index:idx_fav_pair,unique;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }

// ViewCount 一次浏览记录
type ViewCount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_view_user;not null"`
	BookID    string    `json:"book_id" gorm:"type:varchar(36);index:idx_view_book;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (ViewCount) TableName() string { return "view_counts" }
