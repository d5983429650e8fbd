// Package app 组装仓储、缓存与服务，供 cmd/server 与 cmd/seed 共用。
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookers/config"
	"github.com/d60-Lab/bookers/internal/api/handler"
	"github.com/d60-Lab/bookers/internal/cache"
	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/service"
	"github.com/d60-Lab/bookers/pkg/auth"
	"github.com/d60-Lab/bookers/pkg/database"
	"github.com/d60-Lab/bookers/pkg/logger"
	"github.com/d60-Lab/bookers/pkg/storage"
)

// App 持有进程内的全部依赖
type App struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Blobs    *storage.Store
	Tokens   *auth.TokenManager
	Cache    *cache.FollowingsCache
	Recorder *service.ViewRecorder

	Users     service.UserService
	Relations service.RelationshipService
	Images    service.ProfileImageService
	Books     service.BookService
	Chats     service.ChatService

	stopRecorder func(context.Context) error
}

// New 打开数据库与 Redis，启动浏览数写入 worker
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := model.Migrate(db); err != nil {
			return nil, err
		}
	}

	a := &App{
		DB:     db,
		Blobs:  storage.New(afero.NewOsFs(), cfg.Storage.Root, cfg.Storage.URLPrefix),
		Tokens: auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expire),
	}

	if cfg.Redis.Enabled {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.Cache = cache.NewFollowingsCache(a.Redis, cfg.Redis.TTL)
	}

	userRepo := repository.NewUserRepository(db)
	attRepo := repository.NewAttachmentRepository(db)
	viewRepo := repository.NewViewCountRepository(db)

	a.Recorder = service.NewViewRecorder(viewRepo, cfg.Workers.ViewQueueSize)
	a.stopRecorder = a.Recorder.Start(cfg.Workers.ViewRecorders)

	a.Relations = service.NewRelationshipService(repository.NewRelationshipRepository(db), userRepo, a.Cache)
	a.Users = service.NewUserService(userRepo, attRepo, a.Blobs, a.Tokens)
	a.Images = service.NewProfileImageService(userRepo, attRepo, a.Blobs)
	a.Books = service.NewBookService(
		userRepo,
		repository.NewBookRepository(db),
		repository.NewCommentRepository(db),
		repository.NewFavoriteRepository(db),
		viewRepo,
		a.Recorder,
	)
	a.Chats = service.NewChatService(repository.NewRoomRepository(db), a.Relations)
	return a, nil
}

// Handler 构造 HTTP 处理器
func (a *App) Handler() *handler.Handler {
	return handler.NewHandler(a.Users, a.Relations, a.Images, a.Books, a.Chats, a.Blobs)
}

// Close 等待浏览数队列排空后关闭连接
func (a *App) Close(ctx context.Context) error {
	if err := a.stopRecorder(ctx); err != nil {
		logger.Warn("view recorder stop", zap.Error(err))
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	return database.Close(a.DB)
}
