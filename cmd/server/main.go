package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	accountcache "marketplace-backend/internal/cache/redis"
	"marketplace-backend/internal/common/config"
	"marketplace-backend/internal/common/logger"
	"marketplace-backend/internal/common/middleware"
	accounthttp "marketplace-backend/internal/features/account/delivery/http"
	accountmongo "marketplace-backend/internal/features/account/repository/mongo"
	accountservice "marketplace-backend/internal/features/account/service"
	offerhttp "marketplace-backend/internal/features/offer/delivery/http"
	offermongo "marketplace-backend/internal/features/offer/repository/mongo"
	offerservice "marketplace-backend/internal/features/offer/service"
	"marketplace-backend/internal/platform/mongo"
	"marketplace-backend/internal/platform/redis"
	"marketplace-backend/internal/platform/storage"
)

func main() {
	cfg := config.Load()

	logger.Init("marketplace-backend", cfg.Debug)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := mongo.NewConnection(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer db.Close(context.Background())

	if err := accountmongo.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	assets, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize asset store")
	}

	accountRepo := accountmongo.NewAccountRepository(db)
	offerRepo := offermongo.NewOfferRepository(db)

	accountSvc := accountservice.NewAccountService(accountRepo, assets)
	offerSvc := offerservice.NewOfferService(offerRepo, accountRepo, assets)

	authCache := accountcache.NewAccountCache(rdb, cfg.Redis.AuthCacheTTL)
	auth := middleware.Auth(accountSvc, authCache)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "marketplace API"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	api := router.Group("/api/v1")
	accounthttp.NewAccountHandler(accountSvc).RegisterRoutes(api)
	offerhttp.NewOfferHandler(offerSvc).RegisterRoutes(api, auth)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
