package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/bookers/internal/api/middleware"
    "github.com/d60-Lab/bookers/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
    if err := h.relService.Follow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
        h.fail(c, err)
        return
    }
    response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
    if err := h.relService.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
        h.fail(c, err)
        return
    }
    response.Success(c, nil)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
    page, pageSize := pagination(c)
    list, err := h.relService.ListFollowings(c.Request.Context(), c.Param("id"), page, pageSize)
    if err != nil {
        h.fail(c, err)
        return
    }
    response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": newUserViews(list)})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
    page, pageSize := pagination(c)
    list, err := h.relService.ListFollowers(c.Request.Context(), c.Param("id"), page, pageSize)
    if err != nil {
        h.fail(c, err)
        return
    }
    response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": newUserViews(list)})
}

// IsFollowing 判断 id 是否关注了 other
// @Summary 是否关注
// @Tags 关系链
// @Param id path string true "用户ID"
// @Param other path string true "对方用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{id}/following/{other} [get]
func (h *Handler) IsFollowing(c *gin.Context) {
    ok, err := h.relService.IsFollowing(c.Request.Context(), c.Param("id"), c.Param("other"))
    if err != nil {
        h.fail(c, err)
        return
    }
    response.Success(c, gin.H{"following": ok})
}
