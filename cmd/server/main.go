package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newsdesk/newsroom/internal/api"
	"github.com/newsdesk/newsroom/internal/auth"
	"github.com/newsdesk/newsroom/internal/blob"
	"github.com/newsdesk/newsroom/internal/config"
	"github.com/newsdesk/newsroom/internal/db"
	"github.com/newsdesk/newsroom/internal/importer"
	"github.com/newsdesk/newsroom/internal/lifecycle"
	"github.com/newsdesk/newsroom/internal/middleware"
	"github.com/newsdesk/newsroom/internal/notify"
	"github.com/newsdesk/newsroom/internal/repository"
	"github.com/newsdesk/newsroom/internal/scheduler"

	"github.com/rs/cors"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	articleRepo := repository.NewArticleRepository(conn)
	versionRepo := repository.NewArticleVersionRepository(conn)
	subscriberRepo := repository.NewSubscriberRepository(conn)

	// External adapters
	blobStore, err := blob.NewCloudinaryStore(cfg.Blob.CloudName, cfg.Blob.APIKey, cfg.Blob.APISecret, cfg.Blob.Folder)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	notifier, err := notify.NewSMTPNotifier(cfg.SMTP)
	if err != nil {
		log.Fatalf("Failed to initialize mail client: %v", err)
	}

	// Core services
	lifecycleService := lifecycle.NewService(articleRepo, versionRepo, blobStore)
	importService := importer.NewService(lifecycleService)
	digest := notify.NewDigest(articleRepo, subscriberRepo, notifier, cfg.Server.BaseURL, cfg.Scheduler.DigestSize)

	// Background jobs
	jobs, err := scheduler.New(articleRepo, digest, cfg.Scheduler.Config)
	if err != nil {
		log.Fatalf("Failed to build scheduler: %v", err)
	}
	if err := jobs.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// HTTP surface
	tokenProvider := auth.NewJWTProvider(cfg.Auth.JWTSecret)
	handlers := api.NewServer(lifecycleService, importService)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.Logging(
			middleware.Authenticate(tokenProvider)(handlers.Routes()),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting newsroom server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Printf("Scheduler did not stop cleanly: %v", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
