package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFail(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is too short (minimum is 2 characters)", model.ErrInvalid), http.StatusUnprocessableEntity},
		{repository.ErrNameTaken, http.StatusConflict},
		{repository.ErrEmailTaken, http.StatusConflict},
		{repository.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("unfollow: %w", repository.ErrRelationshipNotFound), http.StatusNotFound},
		{repository.ErrBookNotFound, http.StatusNotFound},
		{service.ErrFollowSelf, http.StatusBadRequest},
		{service.ErrNotImage, http.StatusBadRequest},
		{service.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotMutual, http.StatusForbidden},
		{service.ErrNotRoomMember, http.StatusForbidden},
		{errors.New("db is down"), http.StatusInternalServerError},
	}

	h := &Handler{}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			h.fail(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSelf(t *testing.T) {
	h := &Handler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "u1"}}
	c.Set("user_id", "u1")
	uid, ok := h.self(c)
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "u2"}}
	c.Set("user_id", "u1")
	_, ok = h.self(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPagination(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&page_size=20", nil)
	page, size := pagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, size)

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	page, size = pagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}
