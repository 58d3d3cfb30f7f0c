package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/api"
	"github.com/ryabkov/filegallery/internal/controller"
	"github.com/ryabkov/filegallery/internal/filestore"
	"github.com/ryabkov/filegallery/internal/migrations"
	"github.com/ryabkov/filegallery/internal/service"
	"github.com/ryabkov/filegallery/internal/storage/postgres"
	redisstorage "github.com/ryabkov/filegallery/internal/storage/redis"
	"github.com/ryabkov/filegallery/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	uploadConfig := util.NewUploadConfig()
	blobs, err := filestore.New(uploadConfig.DataDir)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	storage := postgres.NewStorage(db)

	limiterConfig := util.NewRateLimiterConfig()
	loginLimiter := redisstorage.NewLoginLimiter(
		redisClient,
		limiterConfig.Limit,
		limiterConfig.Interval,
		limiterConfig.BlockTime,
	)

	tokenService := service.NewTokenService(util.NewTokenConfig())
	authService := service.NewAuthService(tokenService, storage, loginLimiter, util.NewAdminConfig(), logger)
	galleryService := service.NewGalleryService(storage, blobs, logger)

	controller := controller.NewController(logger, authService, galleryService, uploadConfig, util.IsProduction())

	apiServer := api.NewAPI(controller, tokenService, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}
