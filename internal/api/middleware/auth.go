package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/auth"
	"github.com/d60-Lab/bookers/pkg/response"
)

// ContextUserID 当前登录用户 ID 在 gin.Context 中的键
const ContextUserID = "user_id"

// UserLookup 令牌签发后账号可能已注销，每次请求都要确认用户仍存在
type UserLookup interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// Auth 要求 Bearer 令牌；users 为 nil 时只校验签名
func Auth(tokens *auth.TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := parseBearer(c, tokens)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		if err := checkUser(c, users, uid); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				response.Unauthorized(c, "account no longer exists")
				return
			}
			response.InternalError(c, err)
			return
		}
		c.Set(ContextUserID, uid)
		c.Next()
	}
}

// OptionalAuth 有合法令牌且用户存在时设置当前用户，否则匿名继续
func OptionalAuth(tokens *auth.TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := parseBearer(c, tokens); ok {
			err := checkUser(c, users, uid)
			switch {
			case err == nil:
				c.Set(ContextUserID, uid)
			case !errors.Is(err, repository.ErrUserNotFound):
				response.InternalError(c, err)
				return
			}
		}
		c.Next()
	}
}

func checkUser(c *gin.Context, users UserLookup, uid string) error {
	if users == nil {
		return nil
	}
	_, err := users.Get(c.Request.Context(), uid)
	return err
}

func parseBearer(c *gin.Context, tokens *auth.TokenManager) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	uid, err := tokens.Parse(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", false
	}
	return uid, true
}

// CurrentUserID 未登录时返回空串
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
