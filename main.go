package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/controllers"
	"storefront-service/repository"
	"storefront-service/routes"
	"storefront-service/services"
	"storefront-service/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	rdb := redis.NewClient(redisOpts)

	// AWS configuration (LocalStack-compatible) using AWS SDK v2
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecret := os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.AWSRegion),
	}
	if awsAccessKey != "" || awsSecret != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecret, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), cfgOpts...)
	if err != nil {
		zap.L().Fatal("Failed to load AWS config", zap.Error(err))
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.AWSS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSS3Endpoint)
		}
	})

	ddbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	// Repositories
	tenantRepo := repository.NewDynamoTenantAdapter(ddbClient, cfg.TenantsTable)
	productRepo := repository.NewDynamoProductAdapter(ddbClient, cfg.ProductsTable)
	categoryRepo := repository.NewDynamoCategoryAdapter(ddbClient, cfg.CategoriesTable)
	imageRepo := repository.NewDynamoImageAdapter(ddbClient, cfg.ImagesTable)
	settingsRepo := repository.NewDynamoSettingsAdapter(ddbClient, cfg.SettingsTable)

	objectStore := storage.NewS3Store(s3Client, cfg.S3Bucket, cfg.AWSS3Endpoint, cfg.CDNDomain)
	journal := services.NewQuotaJournal(rdb)

	transferService := services.NewTransferService(tenantRepo, productRepo, categoryRepo, imageRepo, settingsRepo, objectStore, journal)
	catalogService := services.NewCatalogService(tenantRepo, productRepo)

	// Repair any item limit left inflated by a crash mid-transfer.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if restored := transferService.RecoverOrphanedQuotas(startupCtx); restored > 0 {
		zap.L().Info("recovered orphaned quotas", zap.Int("count", restored))
	}
	startupCancel()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	services.StartTransferWorker(workerCtx, rdb, transferService)

	// Controllers
	cache := controllers.NewCacheManager(rdb)
	transferController := controllers.NewTransferController(transferService, rdb)
	catalogController := controllers.NewCatalogController(catalogService, cache)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, transferController, catalogController, cfg.APIKey)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Storefront Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down Storefront Service...")

	workerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}

	zap.L().Info("Storefront Service stopped gracefully")
}
