// Package main is the auto-publish job, meant to run on a schedule (cron
// or a systemd timer, hourly is plenty). Each run publishes at most one
// moderated post, and only when the last publication is at least the
// cadence interval in the past, so the site drips out roughly one post a
// day without anyone touching the admin panel.
package main

import (
	"log/slog"
	"os"
	"time"

	"roadbook/internal/config"
	"roadbook/internal/database"
	"roadbook/internal/publish"
	"roadbook/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	publisher := publish.NewAutoPublisher(store.NewPostStore(db), logger)
	post, err := publisher.Run(time.Now())
	if err != nil {
		slog.Error("auto-publish run failed", "error", err)
		os.Exit(1)
	}

	if post == nil {
		slog.Info("nothing to publish")
		return
	}
	slog.Info("auto-published", "post_id", post.ID, "title", post.Title)
}
