package handler

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/service"
	"github.com/d60-Lab/bookers/pkg/response"
	"github.com/d60-Lab/bookers/pkg/storage"
)

// UploadProfileImage 上传头像（multipart 字段 image）
// @Summary 上传头像
// @Tags 用户
// @Accept multipart/form-data
// @Param id path string true "用户ID"
// @Param image formData file true "头像"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /api/v1/users/{id}/profile_image [put]
func (h *Handler) UploadProfileImage(c *gin.Context) {
	uid, ok := h.self(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxProfileImageSize+1<<20)
	fh, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(c, service.ErrImageTooLarge)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	att, err := h.imageService.Attach(c.Request.Context(), uid, fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"profile_image": h.blobs.URL(att.Key), "content_type": att.ContentType, "byte_size": att.ByteSize})
}

// GetProfileImage 头像地址，未上传时为 no_image.jpg
// @Summary 头像地址
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id}/profile_image [get]
func (h *Handler) GetProfileImage(c *gin.Context) {
	url, err := h.imageService.ProfileImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"profile_image": url})
}

// RemoveProfileImage 删除头像，恢复为 no_image.jpg
// @Summary 删除头像
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id}/profile_image [delete]
func (h *Handler) RemoveProfileImage(c *gin.Context) {
	uid, ok := h.self(c)
	if !ok {
		return
	}
	if err := h.imageService.Remove(c.Request.Context(), uid); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"profile_image": model.DefaultProfileImage})
}

// ServeBlob 读取已存储的附件
func (h *Handler) ServeBlob(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	f, err := h.blobs.Open(key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		response.NotFound(c, "blob not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if st.IsDir() {
		response.NotFound(c, "blob not found")
		return
	}
	if mt, err := mimetype.DetectReader(f); err == nil {
		c.Header("Content-Type", mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		response.InternalError(c, err)
		return
	}
	http.ServeContent(c.Writer, c.Request, path.Base(key), st.ModTime(), f)
}
