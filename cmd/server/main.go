package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/handler"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/bitfantasy/barstock/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting barstock service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 建表
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Location{},
		&entity.UnitType{},
		&entity.Beverage{},
		&entity.Stock{},
		&entity.StockCount{},
		&entity.StockCountItem{},
		&entity.OperationLog{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, cfg)

	// 首次启动没有员工账号时引导一个
	if err := bootstrapAdmin(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to bootstrap admin user", zap.Error(err))
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "./web/static")

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	secret := cfg.JWT.Secret

	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 匿名落地页和登录
	r.GET("/", middleware.OptionalSession(secret), h.Page.Index)
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/auth/login", h.Auth.Login)
	r.POST("/auth/logout", h.Auth.Logout)

	// 链接登录（无需会话）
	r.GET("/token-login/:uid/:token", h.Auth.TokenLogin)

	// 页面路由，所有库存入口统一走会话 + 位置范围检查
	pages := r.Group("", middleware.SessionAuth(secret))
	{
		locations := pages.Group("/locations")
		locations.GET("", middleware.RequireStaff(), h.Page.Locations)

		scoped := locations.Group("/:id", middleware.LocationScope())
		{
			scoped.GET("", h.Page.LocationDetail)
			scoped.POST("/stocks/:stockId/update", h.Stock.Update)
			scoped.POST("/stocks/:stockId/adjust", h.Stock.Adjust)
			scoped.POST("/counts", h.Count.Save)
			scoped.GET("/counts/export", h.Count.Export)
			scoped.GET("/token", middleware.RequireStaff(), h.Auth.GenerateToken)
		}
	}

	// 员工 JSON API
	api := r.Group("/api/v1", middleware.JWTAuth(secret), middleware.RequireStaffAPI())
	{
		locations := api.Group("/locations")
		{
			locations.GET("", h.Location.List)
			locations.POST("", h.Location.Create)
			locations.GET("/:id", h.Location.Get)
			locations.PUT("/:id", h.Location.Update)
			locations.POST("/:id/user", h.Location.CreateUser)
		}

		unitTypes := api.Group("/unit-types")
		{
			unitTypes.GET("", h.Beverage.ListUnitTypes)
			unitTypes.POST("", h.Beverage.CreateUnitType)
			unitTypes.DELETE("/:id", h.Beverage.DeleteUnitType)
		}

		beverages := api.Group("/beverages")
		{
			beverages.GET("", h.Beverage.List)
			beverages.POST("", h.Beverage.Create)
			beverages.GET("/:id", h.Beverage.Get)
			beverages.PUT("/:id", h.Beverage.Update)
		}
	}
}

// bootstrapAdmin 库里没有员工账号时按环境变量引导一个
func bootstrapAdmin(db *gorm.DB, zapLogger *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.User{}).Where("is_staff = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := config.GetEnvOrDefault("ADMIN_PASSWORD", "")
	if password == "" {
		zapLogger.Warn("No staff user and ADMIN_PASSWORD not set, skipping bootstrap")
		return nil
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &entity.User{
		ID:           uuid.New().String()[:32],
		Username:     config.GetEnvOrDefault("ADMIN_USERNAME", "admin"),
		Name:         "Administrator",
		PasswordHash: hash,
		IsStaff:      true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	zapLogger.Info("Bootstrapped staff user", zap.String("username", admin.Username))
	return nil
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
		Logger: logger.Default.LogMode(logger.Warn),
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

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
