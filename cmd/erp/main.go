package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/config"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/audit"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	erpHandler "github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/handler"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/mirror"
	erpRepo "github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/repository"
	erpService "github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/service"
	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
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

	zapLogger.Info("Starting erp-planning service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate tables", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// Redis BOM行缓存，连不上就降级直查库
	rdb := initRedis(cfg.Redis, zapLogger)

	// MinIO 展开结果审计归档，未配置则不归档
	archiver := initArchiver(cfg.MinIO, zapLogger)

	// 采购镜像客户端，未配置返回nil
	mirrorClient := mirror.NewClient(cfg.Mirror.BaseURL, cfg.Mirror.Token, zapLogger)

	repos := erpRepo.NewRepositories(db)
	services := erpService.NewServices(repos, rdb, archiver, mirrorClient, zapLogger)
	handlers := erpHandler.NewHandlers(services)

	port := os.Getenv("ERP_PORT")
	if port == "" {
		port = "8081"
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "erp-planning"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "erp-planning"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "erp-planning",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// BOM
		bom := v1.Group("/bom")
		{
			bom.POST("/:productId/explode", handlers.BOM.Explode)
			bom.POST("/:productId/import", handlers.BOM.Import)
		}

		// MRP
		mrp := v1.Group("/mrp")
		{
			mrp.POST("/run", handlers.MRP.Run)
			mrp.GET("/demands", handlers.MRP.ListDemands)
			mrp.GET("/demands/:id", handlers.MRP.GetDemand)
			mrp.POST("/demands/:id/purchase-requisitions", handlers.MRP.GeneratePRs)
			mrp.GET("/purchase-requisitions", handlers.MRP.ListPRs)
		}

		// 工单
		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", handlers.WorkOrder.List)
			workOrders.POST("", handlers.WorkOrder.CreateMaster)
			workOrders.GET("/:id", handlers.WorkOrder.Get)
			workOrders.POST("/:id/children", handlers.WorkOrder.CreateChild)
			workOrders.PUT("/:id/status", handlers.WorkOrder.UpdateStatus)
			workOrders.GET("/:id/dependencies", handlers.WorkOrder.CheckDependencies)
			workOrders.POST("/:id/trigger-next", handlers.WorkOrder.TriggerNext)
			workOrders.POST("/:id/issue", handlers.WorkOrder.IssueMaterials)
			workOrders.POST("/:id/reports", handlers.WorkOrder.RecordOutput)
			workOrders.DELETE("/:id", handlers.WorkOrder.Delete)
		}

		// 废料
		scrap := v1.Group("/scrap")
		{
			scrap.GET("", handlers.Scrap.List)
			scrap.GET("/work-orders/:id", handlers.Scrap.ListByWorkOrder)
			scrap.POST("/work-orders/:id/regenerate", handlers.Scrap.Regenerate)
			scrap.GET("/work-orders/:id/preview", handlers.Scrap.Preview)
		}

		// 销售订单
		salesOrders := v1.Group("/sales-orders")
		{
			salesOrders.GET("", handlers.Sales.List)
			salesOrders.POST("", handlers.Sales.Create)
			salesOrders.GET("/:id", handlers.Sales.Get)
		}

		// 库存
		inventory := v1.Group("/inventory")
		{
			inventory.GET("", handlers.Inventory.List)
			inventory.GET("/transactions", handlers.Inventory.ListTransactions)
			inventory.GET("/:materialId/available", handlers.Inventory.GetAvailable)
			inventory.POST("/inbound", handlers.Inventory.Inbound)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("ERP Server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down ERP server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("ERP Server exited")
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
	return db, nil
}

func initRedis(cfg config.RedisConfig, zapLogger *zap.Logger) *redis.Client {
	if cfg.Host == "" {
		zapLogger.Warn("Redis not configured, BOM cache disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, BOM cache disabled", zap.Error(err))
		return nil
	}
	return rdb
}

func initArchiver(cfg config.MinIOConfig, zapLogger *zap.Logger) *audit.Archiver {
	if cfg.Endpoint == "" {
		zapLogger.Warn("MinIO not configured, explosion archive disabled")
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("MinIO client init failed, explosion archive disabled", zap.Error(err))
		return nil
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "erp-audit"
	}
	archiver, err := audit.NewArchiver(client, bucket, zapLogger)
	if err != nil {
		zapLogger.Warn("MinIO bucket setup failed, explosion archive disabled", zap.Error(err))
		return nil
	}
	return archiver
}
