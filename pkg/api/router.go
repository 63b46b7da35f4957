package api

import (
	"scrapectl/pkg/api/handlers"
	"scrapectl/pkg/api/middleware"
	"scrapectl/pkg/history"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter exposes the history log over HTTP. An empty apiKey disables auth.
func NewRouter(store *history.Store, apiKey string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API routes
	v1 := router.Group("/api/v1")
	{
		entries := v1.Group("/history")
		entries.Use(middleware.RequireAPIKey(apiKey))
		{
			entries.GET("", handlers.ListHistory(store))
			entries.DELETE("", handlers.ClearHistory(store))
			entries.GET("/:index", handlers.GetHistory(store))
			entries.GET("/:index/markdown", handlers.ExportHistory(store))
			entries.DELETE("/:index", handlers.DeleteHistory(store))
		}
	}

	return router
}
