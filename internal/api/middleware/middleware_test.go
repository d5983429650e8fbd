package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", Auth(tokens, nil), func(c *gin.Context) { c.String(http.StatusOK, CurrentUserID(c)) })
	r.GET("/maybe", OptionalAuth(tokens, nil), func(c *gin.Context) { c.String(http.StatusOK, "["+CurrentUserID(c)+"]") })

	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = perform(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	w = perform(r, httptest.NewRequest(http.MethodGet, "/maybe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

// knownUsers 仅包含 map 中的用户
type knownUsers map[string]bool

func (k knownUsers) Get(_ context.Context, id string) (*model.User, error) {
	if !k[id] {
		return nil, repository.ErrUserNotFound
	}
	return &model.User{ID: id}, nil
}

func TestAuth_DeletedAccount(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	users := knownUsers{"u1": true}
	r := gin.New()
	r.GET("/me", Auth(tokens, users), func(c *gin.Context) { c.String(http.StatusOK, CurrentUserID(c)) })
	r.GET("/maybe", OptionalAuth(tokens, users), func(c *gin.Context) { c.String(http.StatusOK, "["+CurrentUserID(c)+"]") })

	request := func(path, uid string) *httptest.ResponseRecorder {
		token, err := tokens.Issue(uid)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return perform(r, req)
	}

	w := request("/me", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	// 令牌签名有效，但账号已注销
	assert.Equal(t, http.StatusUnauthorized, request("/me", "gone").Code)

	w = request("/maybe", "gone")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := perform(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	// 不同客户端互不影响
	assert.True(t, l.Allow("b"))

	r := gin.New()
	r.Use(NewRateLimiter(1, 1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
