package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vamlemat/sync-ps-to-ps-importer/controllers"
	"github.com/vamlemat/sync-ps-to-ps-importer/database"
	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
	"github.com/vamlemat/sync-ps-to-ps-importer/repository"
	"github.com/vamlemat/sync-ps-to-ps-importer/routes"
	"github.com/vamlemat/sync-ps-to-ps-importer/services"
)

func main() {
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

	db, err := database.Connect(logger)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zap.L().Warn("Failed to parse REDIS_URL, async imports disabled", zap.Error(err))
		} else {
			rdb = redis.NewClient(redisOpts)
		}
	}

	// --- Dependency injection ---

	langs := services.LangConfig{DefaultLangID: cfg.DefaultLangID, LangIDs: cfg.LangIDs}

	remoteOpts := []remote.Option{remote.WithDebug(cfg.RemoteDebug)}
	if cfg.RemoteCustomIP != "" {
		remoteOpts = append(remoteOpts, remote.WithCustomIP(cfg.RemoteCustomIP))
	}
	remoteClient := remote.NewClient(cfg.RemoteURL, cfg.RemoteAPIKey, remoteOpts...)

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	manufacturerRepo := repository.NewManufacturerRepository(db)
	featureRepo := repository.NewFeatureRepository(db)
	attributeRepo := repository.NewAttributeRepository(db)
	combinationRepo := repository.NewCombinationRepository(db)
	imageRepo := repository.NewImageRepository(db)
	stockRepo := repository.NewStockRepository(db)

	imageStore := services.NewDiskImageStore(cfg.ImageDir, nil)
	runLog := services.NewRunLog(cfg.LogDir, 24*time.Hour)

	resolver := services.NewResolver(categoryRepo, manufacturerRepo, featureRepo, attributeRepo, langs)
	builder := services.NewCategoryBuilder(remoteClient, resolver, imageStore, langs, cfg.HomeCategoryID, cfg.RootSentinel)
	mapper := services.NewFieldMapper(langs, cfg.UnitPriceMax)

	importer := services.NewImporterService(
		remoteClient, resolver, builder, mapper, imageStore, runLog,
		productRepo, featureRepo, combinationRepo, imageRepo, stockRepo,
		services.ImporterConfig{
			Langs:               langs,
			CoverageFeatureName: cfg.CoverageFeatureName,
			MinImageBytes:       cfg.MinImageBytes,
			HomeCategoryID:      cfg.HomeCategoryID,
		},
	)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	var queue *services.ImportQueue
	if rdb != nil {
		queue = services.NewImportQueue(rdb)
		services.StartImportWorker(workerCtx, rdb, importer)
	}

	importController := controllers.NewImportController(importer, queueOrNil(queue))
	remoteController := controllers.NewRemoteController(remoteClient, cfg.DefaultLangID)
	logsController := controllers.NewLogsController(runLog)

	// --- HTTP server and middleware ---

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterImportRoutes(r, importController)
	routes.RegisterRemoteRoutes(r, remoteController)
	routes.RegisterLogRoutes(r, logsController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- Graceful shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Importer service starting",
			zap.String("port", cfg.Port),
			zap.String("remote", cfg.RemoteURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down importer service...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zap.L().Error("Failed to close Redis", zap.Error(err))
		}
	}

	zap.L().Info("Importer service stopped gracefully")
}

// queueOrNil keeps the controller's QueueAPI nil when Redis is absent; a
// typed nil pointer would dodge the handler's nil checks.
func queueOrNil(q *services.ImportQueue) controllers.QueueAPI {
	if q == nil {
		return nil
	}
	return q
}
