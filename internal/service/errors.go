package service

import "errors"

var (
	ErrFollowSelf         = errors.New("cannot follow self")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrNotMutual          = errors.New("users do not follow each other")
	ErrNotRoomMember      = errors.New("not a member of this room")
	ErrNotImage           = errors.New("profile image must be an image")
	ErrImageTooLarge      = errors.New("profile image is too large")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageOffset 规范化分页参数并返回 offset/limit
func pageOffset(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}
