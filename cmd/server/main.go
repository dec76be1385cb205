package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nkvtd/pc-forge/internal/config"
	"github.com/nkvtd/pc-forge/internal/handler"
	"github.com/nkvtd/pc-forge/internal/middleware"
	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting pc-forge service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Component{},
		&entity.ComponentSpec{},
		&entity.SpecGroupValue{},
		&entity.Build{},
		&entity.BuildComponent{},
		&entity.FavoriteBuild{},
		&entity.BuildRating{},
		&entity.BuildReview{},
		&entity.ComponentSuggestion{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Auth (no login required)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Public catalog reads
		v1.GET("/components", h.Catalog.List)
		v1.GET("/components/:id", h.Catalog.Get)

		// Public build reads. The detail view personalizes for a logged-in
		// viewer, hence the optional auth.
		v1.GET("/builds", h.Build.ListApproved)
		v1.GET("/builds/top-rated", h.Build.ListTopRated)
		v1.GET("/builds/:id", middleware.OptionalJWTAuth(cfg.JWT.Secret), h.Build.Get)
		v1.GET("/builds/:id/reviews", h.Social.ListReviews)
		v1.GET("/builds/:id/ratings", h.Social.Stats)
		v1.GET("/builds/:id/export", h.Build.Export)

		// Authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/my/builds", h.Build.ListOwn)

			builds := authorized.Group("/builds")
			{
				builds.POST("", h.Build.Create)
				builds.POST("/:id/components/:componentId", h.Build.Attach)
				builds.DELETE("/:id/components/:componentId", h.Build.Detach)
				builds.POST("/:id/submit", h.Build.Submit)
				builds.DELETE("/:id", h.Build.Delete)
				builds.POST("/:id/clone", h.Build.Clone)

				builds.POST("/:id/favorite", h.Social.ToggleFavorite)
				builds.PUT("/:id/rating", h.Social.Rate)
				builds.PUT("/:id/review", h.Social.Review)
			}

			authorized.POST("/suggestions", h.Moderation.CreateSuggestion)

			// Admin routes
			admin := authorized.Group("")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.POST("/components", h.Catalog.Create)
				admin.PUT("/components/:id", h.Catalog.Update)
				admin.POST("/components/images", h.Catalog.UploadImage)

				admin.PUT("/builds/:id/approval", h.Moderation.SetBuildApproval)

				admin.GET("/suggestions", h.Moderation.ListSuggestions)
				admin.PUT("/suggestions/:id/status", h.Moderation.SetSuggestionStatus)
			}
		}
	}
}
