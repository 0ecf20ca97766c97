package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ecoba/alumni-backend/internal/handlers"
)

type RouterConfig struct {
	AlumniHandler       *handlers.AlumniHandler
	ScanHandler         *handlers.ScanHandler
	NotificationHandler *handlers.NotificationHandler
	SSEHandler          *handlers.SSEHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// SSE
	router.GET("/sse/stream", cfg.SSEHandler.Stream)

	api := router.Group("/api")
	{
		// Alumni records
		api.GET("/alumni", cfg.AlumniHandler.ListAlumni)
		api.GET("/alumni/stats", cfg.AlumniHandler.GetStats)
		api.GET("/alumni/locations", cfg.AlumniHandler.GetLocations)
		api.GET("/alumni/export", cfg.AlumniHandler.ExportCSV)
		api.PATCH("/alumni/:id/approval", cfg.AlumniHandler.UpdateApproval)

		// Scan
		api.POST("/scan", cfg.ScanHandler.TriggerScan)
		api.GET("/scan/history", cfg.ScanHandler.GetHistory)

		// Notifications
		api.GET("/notifications", cfg.NotificationHandler.ListNotifications)
		api.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
		api.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
	}

	return router
}
