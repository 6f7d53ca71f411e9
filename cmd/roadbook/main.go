// Package main is the entry point for the Roadbook server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadbook/internal/cache"
	"roadbook/internal/config"
	"roadbook/internal/database"
	"roadbook/internal/handlers"
	"roadbook/internal/render"
	"roadbook/internal/router"
	"roadbook/internal/session"
	"roadbook/internal/storage"
	"roadbook/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions plus the full-page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Initialize the HTML template renderer.
	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	locationStore := store.NewLocationStore(db)
	postStore := store.NewPostStore(db)
	tagStore := store.NewTagStore(db)
	ratingStore := store.NewRatingStore(db)
	viewStore := store.NewViewStore(db)
	aboutStore := store.NewAboutStore(db)
	galleryStore := store.NewGalleryStore(db)

	// Connect to S3-compatible object storage (optional; the app works
	// without it and image uploads are rejected by the handlers).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	adminHandlers := handlers.NewAdmin(
		renderer, locationStore, postStore, tagStore, aboutStore,
		userStore, galleryStore, ratingStore, storageClient, pageCache,
	)
	publicHandlers := handlers.NewPublic(
		renderer, locationStore, postStore, tagStore, ratingStore,
		viewStore, aboutStore, galleryStore, storageClient, pageCache,
		cfg.SiteURL,
	)

	r := router.New(sessionStore, authHandlers, adminHandlers, publicHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
