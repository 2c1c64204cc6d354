package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "smart_talk_service/cmd/chat_service/docs" // 引入生成的 Swagger 文档
	"smart_talk_service/internal/api/handlers"
	"smart_talk_service/internal/api/router"
	"smart_talk_service/internal/chat/app"
	"smart_talk_service/internal/chat/repository"
	"smart_talk_service/pkg/config"
	"smart_talk_service/pkg/database"
	"smart_talk_service/pkg/logger"
	testtool "smart_talk_service/pkg/test_tool"
	"smart_talk_service/pkg/token"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath, config.ChatDefaults)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(config.IsProduction()); err != nil {
		logger.Log.Fatal("invalid config", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		logger.Log.Warn("jwt.secret not set, using a random per-process secret: sessions end on restart")
	}
	token.Configure(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	ctx := context.Background()

	// 1. Firebase (Firestore + FCM); missing credentials switch to the disabled repositories
	var (
		userRepo    repository.UserRepository
		messageRepo repository.MessageRepository
		pushRepo    repository.PushRepository
	)
	creds := config.GetFirebaseCredentials()
	fb, err := database.NewFirebase(ctx, database.FirebaseConnection{
		ProjectID:       creds.ProjectID,
		PrivateKey:      creds.PrivateKey,
		ClientEmail:     creds.ClientEmail,
		CredentialsPath: cfg.Firebase.CredentialsPath,
	})
	switch {
	case errors.Is(err, database.ErrFirebaseNotConfigured):
		logger.Log.Error("Firebase credentials not found in environment variables, running without firebase")
		userRepo = repository.NewDisabledUserRepository()
		messageRepo = repository.NewDisabledMessageRepository()
		pushRepo = repository.NewDisabledPushRepository()
	case err != nil:
		logger.Log.Fatal("Failed to initialize Firebase", zap.Error(err))
	default:
		logger.Log.Info("Firebase initialized", zap.String("project_id", creds.ProjectID))
		userRepo = repository.NewFirestoreUserRepository(fb.Firestore, cfg.Firebase.UsersCollection)
		messageRepo = repository.NewFirestoreMessageRepository(fb.Firestore, cfg.Firebase.MessagesCollection)
		pushRepo = repository.NewFCMPushRepository(fb.Messaging)
	}

	// 2. Room fan-out: Redis Pub/Sub across instances, in-process otherwise
	var (
		pub         repository.Publisher
		redisClient *redis.Client
	)
	addr, masterName, sentinels := config.GetRedisSetting()
	if cfg.Redis.Addr != "" {
		addr = cfg.Redis.Addr
	}
	if addr != "" || len(sentinels) > 0 {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConnection{
			Addr:          addr,
			MasterName:    masterName,
			SentinelAddrs: sentinels,
			DB:            cfg.Redis.RedisDB,
		})
		if err != nil {
			logger.Log.Fatal("connect redis", zap.Error(err))
		}
		pub = repository.NewRedisPubSub(redisClient)
	} else {
		logger.Log.Warn("redis not configured, room events stay in this instance")
		pub = repository.NewLocalPubSub()
	}

	// 3. UseCases
	userUC := app.NewUserUseCase(userRepo, pub, token.GenerateJWT)
	messageUC := app.NewMessageUseCase(messageRepo, pub, cfg.Firebase.HistoryLimit, cfg.Firebase.MaxHistoryLimit)
	notificationUC := app.NewNotificationUseCase(pushRepo)

	// 4. Fiber
	r := fiber.New()
	accessLog, err := accessLogWriter(config.EnvConfig.ChatServiceLogPath)
	if err != nil {
		logger.Log.Fatal("Failed to open access log", zap.Error(err))
	}
	r.Use(fiber_log.New(fiber_log.Config{
		Output: accessLog,
	}))

	router.RegisterRoutes(r,
		handlers.NewChatHandler(userUC, messageUC, notificationUC),
		app.NewChatWebsocketHandler(userUC, messageUC, pub),
	)

	testtool.StartPprof("localhost:6060")

	port := cfg.Port
	if config.EnvConfig.ChatServicePort != "" {
		port = config.EnvConfig.ChatServicePort
	}
	go func() {
		logger.Log.Info("Chat Service listening", zap.String("port", port))
		if err := r.Listen(":" + port); err != nil {
			logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"fiber": func(ctx context.Context) error {
			return r.ShutdownWithContext(ctx)
		},
		"firebase": func(ctx context.Context) error {
			return fb.Close()
		},
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		},
		"access-log": func(ctx context.Context) error {
			if accessLog == os.Stdout {
				return nil
			}
			return accessLog.Close()
		},
	})

	exitCode := <-wait
	logger.Log.Info("Chat Service exited", zap.Int("code", exitCode))
	logger.Log.Sync()
	os.Exit(exitCode)
}

// accessLogWriter access.log under logDir, stdout when no log dir is configured
func accessLogWriter(logDir string) (*os.File, error) {
	if logDir == "" {
		return os.Stdout, nil
	}
	file, err := os.OpenFile(filepath.Join(logDir, "access.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open access log: %w", err)
	}
	return file, nil
}
