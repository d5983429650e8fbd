package repository

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNameTaken            = errors.New("name has already been taken")
	ErrEmailTaken           = errors.New("email has already been taken")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrBookNotFound         = errors.New("book not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
)
