// Package api 组装 HTTP 路由。
package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/bookers/config"
	_ "github.com/d60-Lab/bookers/docs"
	"github.com/d60-Lab/bookers/internal/api/handler"
	"github.com/d60-Lab/bookers/internal/api/middleware"
	"github.com/d60-Lab/bookers/pkg/auth"
)

// NewRouter 注册全部路由
func NewRouter(cfg *config.Config, h *handler.Handler, tokens *auth.TokenManager, accounts middleware.UserLookup) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Recovery(), middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Storage.URLPrefix != "" {
		r.GET(cfg.Storage.URLPrefix+"/*key", h.ServeBlob)
	}

	authed := middleware.Auth(tokens, accounts)
	optional := middleware.OptionalAuth(tokens, accounts)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users", h.Register)
		v1.POST("/sessions", h.Login)

		users := v1.Group("/users")
		{
			users.GET("", h.SearchUsers)
			users.GET("/:id", optional, h.GetUser)
			users.PATCH("/:id", authed, h.UpdateUser)
			users.DELETE("/:id", authed, h.DeleteUser)

			users.POST("/:id/follow", authed, h.Follow)
			users.DELETE("/:id/follow", authed, h.Unfollow)
			users.GET("/:id/following", h.ListFollowing)
			users.GET("/:id/followers", h.ListFollowers)
			users.GET("/:id/following/:other", h.IsFollowing)

			users.PUT("/:id/profile_image", authed, h.UploadProfileImage)
			users.DELETE("/:id/profile_image", authed, h.RemoveProfileImage)
			users.GET("/:id/profile_image", h.GetProfileImage)
			users.GET("/:id/books", h.ListUserBooks)
		}

		books := v1.Group("/books")
		{
			books.POST("", authed, h.CreateBook)
			books.GET("/:id", optional, h.GetBook)
			books.PATCH("/:id", authed, h.UpdateBook)
			books.DELETE("/:id", authed, h.DeleteBook)
			books.POST("/:id/comments", authed, h.AddComment)
			books.POST("/:id/favorite", authed, h.Favorite)
			books.DELETE("/:id/favorite", authed, h.Unfavorite)
		}

		v1.DELETE("/comments/:id", authed, h.DeleteComment)

		rooms := v1.Group("/rooms", authed)
		{
			rooms.POST("", h.OpenRoom)
			rooms.POST("/:id/chats", h.SendChat)
			rooms.GET("/:id/chats", h.ListChats)
		}
	}
	return r
}
