package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/api/middleware"
	"github.com/d60-Lab/bookers/internal/service"
	"github.com/d60-Lab/bookers/pkg/response"
)

type registerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Introduction string `json:"introduction"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name         *string `json:"name"`
	Introduction *string `json:"introduction"`
}

// Register 注册
// @Summary 注册用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/users [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Introduction: req.Introduction,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, gin.H{"user": newUserView(user), "email": user.Email})
}

// Login 登录
// @Summary 登录并获取访问令牌
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/sessions [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": newUserView(user)})
}

// SearchUsers 按用户名检索
// @Summary 检索用户
// @Tags 用户
// @Param search query string false "perfect_match | forward_match | backward_match | partial_match"
// @Param word query string false "关键字"
// @Success 200 {object} response.Response
// @Router /api/v1/users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.userService.Search(c.Request.Context(), c.Query("search"), c.Query("word"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": newUserViews(users)})
}

// GetUser 用户详情（含头像、关注数，登录时附带是否已关注）
// @Summary 用户详情
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.userService.Get(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	image, err := h.imageService.ProfileImage(ctx, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.relService.Stats(ctx, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{"user": newUserView(user), "profile_image": image, "stats": stats}
	if viewer := middleware.CurrentUserID(c); viewer != "" && viewer != user.ID {
		following, err := h.relService.IsFollowing(ctx, viewer, user.ID)
		if err != nil {
			h.fail(c, err)
			return
		}
		data["following"] = following
	}
	response.Success(c, data)
}

// UpdateUser 更新自己的资料
// @Summary 更新资料
// @Tags 用户
// @Param id path string true "用户ID"
// @Param request body updateProfileRequest true "资料"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/users/{id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	uid, ok := h.self(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), uid, service.UpdateProfileInput{
		Name:         req.Name,
		Introduction: req.Introduction,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, newUserView(user))
}

// DeleteUser 注销账号
// @Summary 注销账号（级联删除书籍、评论、收藏、关注关系等）
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	uid, ok := h.self(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), uid); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
