package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/api/middleware"
	"github.com/d60-Lab/bookers/pkg/response"
)

type openRoomRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// OpenRoom 打开与互相关注用户的私信房间
// @Summary 打开私信房间
// @Tags 私信
// @Param request body openRoomRequest true "对方用户"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/rooms [post]
func (h *Handler) OpenRoom(c *gin.Context) {
	var req openRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	room, err := h.chatService.OpenRoom(c.Request.Context(), middleware.CurrentUserID(c), req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, room)
}

// SendChat 发送私信
// @Summary 发送私信
// @Tags 私信
// @Param id path string true "房间ID"
// @Param request body chatRequest true "消息"
// @Success 201 {object} response.Response
// @Router /api/v1/rooms/{id}/chats [post]
func (h *Handler) SendChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	chat, err := h.chatService.Send(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, chat)
}

// ListChats 房间消息
// @Summary 房间消息列表
// @Tags 私信
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response
// @Router /api/v1/rooms/{id}/chats [get]
func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.chatService.Messages(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": chats})
}
