package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/MaksymY11/mates-backend/config"
	"github.com/MaksymY11/mates-backend/internal/handler"
	"github.com/MaksymY11/mates-backend/internal/middleware"
	"github.com/MaksymY11/mates-backend/internal/repository"
	"github.com/MaksymY11/mates-backend/internal/router"
	"github.com/MaksymY11/mates-backend/internal/service"
	"github.com/MaksymY11/mates-backend/pkg/database"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/MaksymY11/mates-backend/pkg/redis"
	"github.com/MaksymY11/mates-backend/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.Init(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient := redis.NewClient(redis.Config{
		Enabled:      config.Redis.Enabled,
		Addr:         config.RedisAddress(),
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
	})
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	fileStore, err := storage.NewDiskStore(config.Upload.Dir)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize avatar storage", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Services
	hasher := service.NewPasswordHasher()
	jwtService := service.NewJWTService(config.JWT.Secret, config.JWT.AccessTTL)
	authService := service.NewAuthService(userRepo, tokenRepo, hasher, jwtService, config.JWT.RefreshTTL)
	profileCache := service.NewProfileCache(redisClient, config.Redis.ProfileTTL)
	profileService := service.NewProfileService(userRepo, profileCache)
	avatarService := service.NewAvatarService(
		userRepo,
		fileStore,
		profileCache,
		config.Upload.MaxBytes,
		config.Upload.AllowedTypes,
		config.Upload.PublicBaseURL,
	)

	// Handlers
	secureCookies := config.App.Environment == "production"
	authHandler := handler.NewAuthHandler(authService, secureCookies)
	profileHandler := handler.NewProfileHandler(profileService, avatarService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(authService)

	r := router.NewRouter(
		authHandler,
		profileHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
