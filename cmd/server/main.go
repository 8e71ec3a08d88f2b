package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"tierfs-backend/internal/auth"
	"tierfs-backend/internal/config"
	"tierfs-backend/internal/database"
	"tierfs-backend/internal/db"
	"tierfs-backend/internal/handlers"
	"tierfs-backend/internal/health"
	h "tierfs-backend/internal/http"
	"tierfs-backend/internal/middleware"
	"tierfs-backend/internal/models"
	"tierfs-backend/internal/monitoring"
	"tierfs-backend/internal/nas"
	"tierfs-backend/internal/repositories"
	"tierfs-backend/internal/services"
	"tierfs-backend/internal/storage"
	"tierfs-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Database connections
	pool := db.Connect(cfg)
	defer pool.Close()
	sqlDB := db.ConnectSQL(cfg)
	defer sqlDB.Close()

	// Run migrations
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Storage tiers
	cache := storage.NewLocalBackend(cfg.Cache.Dir, "cache")
	backends := map[models.StorageType]storage.Backend{
		models.StorageTypeCache: cache,
	}

	var nasBackend storage.Backend
	if cfg.NAS.Enabled {
		s3b, err := storage.NewS3Backend(context.Background(),
			cfg.NAS.Endpoint, cfg.NAS.AccessKey, cfg.NAS.SecretKey,
			cfg.NAS.Bucket, "", "nas")
		if err != nil {
			log.Fatalf("Failed to configure NAS backend: %v", err)
		}
		nasBackend = s3b
		backends[models.StorageTypeNAS] = nasBackend
	} else {
		log.Println("NAS tier not configured (NAS_S3_ENDPOINT not set)")
	}

	// Repositories
	fileRepo := repositories.NewFileRepository(pool)
	objectRepo := repositories.NewStorageObjectRepository(pool)
	userRepo := repositories.NewUserRepository(pool)

	// Auth
	jwtManager := auth.NewJWTManager(cfg)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Services
	probe := nas.NewProbe(config.MountPath)
	historyStore := monitoring.NewHistoryStore(pool)
	if historyStore != nil {
		collector := monitoring.NewCollector(historyStore, probe, cfg.Cache.Dir, time.Minute)
		collector.Start()
		defer collector.Stop()
	}
	consistencyService := services.NewConsistencyService(fileRepo, objectRepo, backends)
	fileService := services.NewFileService(fileRepo, objectRepo, cache, nasBackend)
	trashService := services.NewTrashService(sqlDB, fileService)
	syncService := services.NewNASSyncService(objectRepo, cache, nasBackend,
		cfg.Sync.Workers, cfg.Sync.PollInterval)

	syncService.Start()
	defer syncService.Stop()

	// Handlers
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool, cfg.Cache.Dir), probe)
	consistencyHandler := handlers.NewConsistencyHandler(consistencyService)
	fileHandler := handlers.NewFileHandler(fileService, trashService)
	trashHandler := handlers.NewTrashHandler(trashService)
	monitoringHandler := handlers.NewMonitoringHandler(objectRepo, historyStore, cfg.Cache.Dir)
	authHandler := handlers.NewAuthHandler(userRepo, jwtManager)

	router := h.NewRouter(healthHandler, consistencyHandler, fileHandler,
		trashHandler, monitoringHandler, authHandler, authMiddleware)
	handler := middleware.NewCORS()(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
