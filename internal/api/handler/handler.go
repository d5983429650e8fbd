package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/api/middleware"
	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/service"
	"github.com/d60-Lab/bookers/pkg/response"
	"github.com/d60-Lab/bookers/pkg/storage"
)

// Handler HTTP 处理器集合
type Handler struct {
	userService  service.UserService
	relService   service.RelationshipService
	imageService service.ProfileImageService
	bookService  service.BookService
	chatService  service.ChatService
	blobs        *storage.Store
}

func NewHandler(
	userService service.UserService,
	relService service.RelationshipService,
	imageService service.ProfileImageService,
	bookService service.BookService,
	chatService service.ChatService,
	blobs *storage.Store,
) *Handler {
	return &Handler{
		userService:  userService,
		relService:   relService,
		imageService: imageService,
		bookService:  bookService,
		chatService:  chatService,
		blobs:        blobs,
	}
}

// fail 将领域错误映射为 HTTP 状态码
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalid):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, repository.ErrNameTaken), errors.Is(err, repository.ErrEmailTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRelationshipNotFound),
		errors.Is(err, repository.ErrBookNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrFavoriteNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrAttachmentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrFollowSelf), errors.Is(err, service.ErrNotImage):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrImageTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotMutual),
		errors.Is(err, service.ErrNotRoomMember):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// self 路径参数 :id 必须是当前登录用户
func (h *Handler) self(c *gin.Context) (string, bool) {
	uid := middleware.CurrentUserID(c)
	if uid == "" || uid != c.Param("id") {
		response.Forbidden(c, service.ErrForbidden.Error())
		return "", false
	}
	return uid, true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}

// userView 对外公开的用户信息，不含邮箱等认证字段
type userView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Introduction string    `json:"introduction"`
	CreatedAt    time.Time `json:"created_at"`
}

func newUserView(u *model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Introduction: u.Introduction, CreatedAt: u.CreatedAt}
}

func newUserViews(users []*model.User) []userView {
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = newUserView(u)
	}
	return out
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
