package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog_api/internal/api"
	"catalog_api/internal/app/service"
	"catalog_api/internal/app/upload"
	"catalog_api/internal/app/worker"
	"catalog_api/internal/common/security"
	"catalog_api/internal/domain/repository"
	"catalog_api/internal/platform/cache"
	"catalog_api/internal/platform/config"
	"catalog_api/internal/platform/database"
	"catalog_api/internal/platform/filestore"
	"catalog_api/internal/platform/logger"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	appLogger := logger.New(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	defer appLogger.Close()
	logger.SetDefault(appLogger)
	logger.Info("Configuration loaded.")

	// 2. JWT
	if cfg.JWTKeyGenerated {
		logger.Warn("JWT_SECRET is not set; using an ephemeral key. Tokens will not survive a restart.")
	}
	security.InitJWT(cfg.JWTKey, cfg.AccessTokenTTL)

	// 3. Storage
	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		database.Connect()
		defer database.Close()
		if err := database.Migrate(database.DB); err != nil {
			logger.Fatal("Could not apply migrations: %v", err)
		}
		userRepo = repository.NewPgUserRepository(database.DB)
		productRepo = repository.NewPgProductRepository(database.DB)
	case config.StoreDriverFile:
		store, err := filestore.Open(cfg.DBFile)
		if err != nil {
			logger.Fatal("Could not open data file %s: %v", cfg.DBFile, err)
		}
		logger.Info("Using data file %s", store.Path())
		userRepo = repository.NewFileUserRepository(store)
		productRepo = repository.NewFileProductRepository(store)
	default:
		logger.Fatal("Unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// 4. Refresh token sessions
	var sessionRepo repository.SessionRepository
	var sweepLock worker.Locker
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		cache.ConnectRedis()
		defer cache.CloseRedis()
		sessionRepo = repository.NewRedisSessionRepository(cache.RDB, cfg.RedisKeyPrefix)
		sweepLock = worker.NewRedisLock(cache.RDB, "catalog:lock:image-sweep", 5*time.Minute)
	case config.SessionStoreMemory:
		sessionRepo = repository.NewMemorySessionRepository()
	default:
		logger.Fatal("Unknown SESSION_STORE %q", cfg.SessionStore)
	}

	// 5. Services
	images, err := upload.NewImageStore(cfg.ImagesDir, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal("Could not prepare images directory %s: %v", cfg.ImagesDir, err)
	}
	authService := service.NewAuthService(userRepo, sessionRepo)
	productService := service.NewProductService(productRepo, images)

	upgraded, err := authService.UpgradeStoredUsers(context.Background())
	if err != nil {
		logger.Fatal("Could not upgrade stored users: %v", err)
	}
	if upgraded > 0 {
		logger.Info("Upgraded %d stored users (role/password hash)", upgraded)
	}

	// 6. Background image sweeper
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	sweeper := worker.NewImageSweeper(productRepo, images, sweepLock, cfg.ImageSweepInterval, cfg.ImageSweepGrace)
	go sweeper.Start(workerCtx)

	// 7. Router and HTTP server
	router := api.NewRouter(authService, productService, api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		ImagesDir:      images.Dir(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Could not listen on %s: %v", cfg.Port, err)
		}
	}()

	<-stop

	logger.Info("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
		return
	}
	logger.Info("Server and worker stopped gracefully.")
}
