package main

import (
	"fmt"
	"os"

	"github.com/ecoba/alumni-backend/internal/clients/redis"
	"github.com/ecoba/alumni-backend/internal/db"
	"github.com/ecoba/alumni-backend/internal/handlers"
	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/repos"
	"github.com/ecoba/alumni-backend/internal/server"
	"github.com/ecoba/alumni-backend/internal/services"
	"github.com/ecoba/alumni-backend/internal/sse"
	"github.com/ecoba/alumni-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	alumniRepo := repos.NewAlumniRecordRepo(thePG, log)
	scanHistoryRepo := repos.NewScanHistoryRepo(thePG, log)
	notificationRepo := repos.NewNotificationRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Scan policy
	policy, err := services.LoadScanPolicy(log)
	if err != nil {
		log.Error("Could not load scan policy", "error", err)
		os.Exit(1)
	}

	// Scan lock is optional; the pipeline degrades to unlocked when
	// Redis is not reachable.
	var scanLock services.ScanLock
	if redisLock, lockErr := redis.NewScanLock(log); lockErr != nil {
		log.Warn("Could not init scan lock, scans will run unlocked", "error", lockErr)
	} else {
		scanLock = redisLock
		defer redisLock.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	searchClient := services.NewSearchClient(log)
	aiClient := services.NewAIClient(log)
	classifier := services.NewLLMClassifier(log, aiClient, policy)
	notificationService := services.NewNotificationService(thePG, log, notificationRepo, sseHub)
	alumniService := services.NewAlumniService(thePG, log, alumniRepo, notificationService)
	scanService := services.NewScanService(
		thePG,
		log,
		policy,
		searchClient,
		aiClient,
		classifier,
		alumniRepo,
		scanHistoryRepo,
		notificationService,
		sseHub,
		scanLock,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	alumniHandler := handlers.NewAlumniHandler(alumniService)
	scanHandler := handlers.NewScanHandler(scanService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AlumniHandler:       alumniHandler,
		ScanHandler:         scanHandler,
		NotificationHandler: notificationHandler,
		SSEHandler:          sseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
