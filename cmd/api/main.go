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

	"scrapectl/pkg/api"
	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/config"
	"scrapectl/pkg/db"
	"scrapectl/pkg/history"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := logger.Init(logger.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logger.CloseLog()
	zlog := logger.L().Named("api")

	ctx := context.Background()

	// Initialize history backend
	var backend history.Backend
	switch cfg.History.Backend {
	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.History.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare schema: %v", err)
		}
		backend = db.NewHistoryBackend(database, cfg.History.Key)
	default:
		backend = history.NewFileBackend(cfg.History.Path)
	}
	store := history.NewStore(backend)

	// Initialize router
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(store, cfg.API.APIKey, zlog)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server starting on %s", srv.Addr)
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("backend", cfg.History.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
