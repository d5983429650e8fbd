package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/logger"
)

// BookDetail 书籍详情页数据
type BookDetail struct {
	Book          *model.Book          `json:"book"`
	Comments      []*model.BookComment `json:"comments"`
	FavoriteCount int64                `json:"favorite_count"`
	ViewCount     int64                `json:"view_count"`
	Favorited     bool                 `json:"favorited"`
}

type BookService interface {
	Create(ctx context.Context, userID, title, body string) (*model.Book, error)
	// Get 返回详情；viewerID 非空时记录一次浏览
	Get(ctx context.Context, id, viewerID string) (*BookDetail, error)
	Update(ctx context.Context, userID, id, title, body string) (*model.Book, error)
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Book, error)

	AddComment(ctx context.Context, userID, bookID, comment string) (*model.BookComment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error

	Favorite(ctx context.Context, userID, bookID string) error
	Unfavorite(ctx context.Context, userID, bookID string) error
}

type bookService struct {
	users     repository.UserRepository
	books     repository.BookRepository
	comments  repository.CommentRepository
	favorites repository.FavoriteRepository
	views     repository.ViewCountRepository
	recorder  *ViewRecorder
}

// NewBookService recorder 为 nil 时同步写浏览记录
func NewBookService(
	users repository.UserRepository,
	books repository.BookRepository,
	comments repository.CommentRepository,
	favorites repository.FavoriteRepository,
	views repository.ViewCountRepository,
	recorder *ViewRecorder,
) BookService {
	return &bookService{users: users, books: books, comments: comments, favorites: favorites, views: views, recorder: recorder}
}

// author 写操作前确认操作者仍存在，避免已注销用户的令牌留下孤儿数据
func (s *bookService) author(ctx context.Context, userID string) error {
	_, err := s.users.GetByID(ctx, userID)
	return err
}

func (s *bookService) Create(ctx context.Context, userID, title, body string) (*model.Book, error) {
	if err := s.author(ctx, userID); err != nil {
		return nil, err
	}
	book := &model.Book{ID: uuid.New().String(), UserID: userID, Title: title, Body: body}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	logger.Info("book created", zap.String("user", userID), zap.String("book", book.ID))
	return book, nil
}

func (s *bookService) Get(ctx context.Context, id, viewerID string) (*BookDetail, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != "" {
		s.recordView(ctx, viewerID, id)
	}

	detail := &BookDetail{Book: book}
	if detail.Comments, err = s.comments.ListByBook(ctx, id); err != nil {
		return nil, err
	}
	if detail.FavoriteCount, err = s.favorites.CountByBook(ctx, id); err != nil {
		return nil, err
	}
	if detail.ViewCount, err = s.views.CountByBook(ctx, id); err != nil {
		return nil, err
	}
	if viewerID != "" {
		if detail.Favorited, err = s.favorites.Exists(ctx, viewerID, id); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *bookService) recordView(ctx context.Context, viewerID, bookID string) {
	if s.recorder != nil {
		s.recorder.Record(viewerID, bookID)
		return
	}
	if err := s.views.Create(ctx, viewerID, bookID); err != nil {
		logger.Warn("record view failed", zap.String("book", bookID), zap.Error(err))
	}
}

// owned 读取书籍并校验归属
func (s *bookService) owned(ctx context.Context, userID, id string) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, ErrForbidden
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, userID, id, title, body string) (*model.Book, error) {
	book, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	book.Title, book.Body = title, body
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.books.Delete(ctx, id)
}

func (s *bookService) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Book, error) {
	offset, limit := pageOffset(page, pageSize)
	return s.books.ListByUser(ctx, userID, offset, limit)
}

func (s *bookService) AddComment(ctx context.Context, userID, bookID, comment string) (*model.BookComment, error) {
	if err := s.author(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	c := &model.BookComment{ID: uuid.New().String(), UserID: userID, BookID: bookID, Comment: comment}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *bookService) DeleteComment(ctx context.Context, userID, commentID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *bookService) Favorite(ctx context.Context, userID, bookID string) error {
	if err := s.author(ctx, userID); err != nil {
		return err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return err
	}
	return s.favorites.Create(ctx, userID, bookID)
}

func (s *bookService) Unfavorite(ctx context.Context, userID, bookID string) error {
	return s.favorites.Delete(ctx, userID, bookID)
}
