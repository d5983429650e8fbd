package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/api/middleware"
	"github.com/d60-Lab/bookers/pkg/response"
)

type bookRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// CreateBook 发布书籍
// @Summary 发布书籍
// @Tags 书籍
// @Accept json
// @Param request body bookRequest true "书籍"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/books [post]
func (h *Handler) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	book, err := h.bookService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Title, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, book)
}

// GetBook 书籍详情，登录用户访问时记录浏览
// @Summary 书籍详情
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Success 200 {object} response.Response{data=service.BookDetail}
// @Failure 404 {object} response.Response
// @Router /api/v1/books/{id} [get]
func (h *Handler) GetBook(c *gin.Context) {
	detail, err := h.bookService.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateBook 修改书籍
// @Summary 修改书籍（仅作者）
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Param request body bookRequest true "书籍"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/books/{id} [patch]
func (h *Handler) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	book, err := h.bookService.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Title, req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, book)
}

// DeleteBook 删除书籍
// @Summary 删除书籍（仅作者）
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Success 200 {object} response.Response
// @Router /api/v1/books/{id} [delete]
func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.bookService.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListUserBooks 某用户发布的书籍
// @Summary 用户书籍列表
// @Tags 书籍
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id}/books [get]
func (h *Handler) ListUserBooks(c *gin.Context) {
	page, pageSize := pagination(c)
	books, err := h.bookService.ListByUser(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": books})
}

// AddComment 发表评论
// @Summary 发表评论
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Param request body commentRequest true "评论"
// @Success 201 {object} response.Response
// @Router /api/v1/books/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.bookService.AddComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, comment)
}

// DeleteComment 删除评论
// @Summary 删除评论（仅评论者）
// @Tags 书籍
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.bookService.DeleteComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Favorite 收藏
// @Summary 收藏书籍
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Success 200 {object} response.Response
// @Router /api/v1/books/{id}/favorite [post]
func (h *Handler) Favorite(c *gin.Context) {
	if err := h.bookService.Favorite(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfavorite 取消收藏
// @Summary 取消收藏
// @Tags 书籍
// @Param id path string true "书籍ID"
// @Success 200 {object} response.Response
// @Router /api/v1/books/{id}/favorite [delete]
func (h *Handler) Unfavorite(c *gin.Context) {
	if err := h.bookService.Unfavorite(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
