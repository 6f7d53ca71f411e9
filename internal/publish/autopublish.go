// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"fmt"
	"log/slog"
	"time"

	"roadbook/internal/models"
	"roadbook/internal/store"
)

// Cadence is the minimum age of the newest publication before the
// auto-publisher acts again. Just under a day, so a daily cron drifts
// forward instead of skipping days.
const Cadence = 23 * time.Hour

// AutoPublisher drains the moderated-unpublished queue one post at a time.
// It is driven externally (cron or a systemd timer running cmd/autopublish);
// each invocation publishes at most one post.
type AutoPublisher struct {
	posts  *store.PostStore
	logger *slog.Logger
}

// NewAutoPublisher returns an AutoPublisher over the given post store.
func NewAutoPublisher(posts *store.PostStore, logger *slog.Logger) *AutoPublisher {
	return &AutoPublisher{posts: posts, logger: logger}
}

// Run performs one auto-publish step at the given instant and returns the
// post it published, or nil when it chose not to act.
//
// If nothing has ever been published the queue is ordered by created_at
// (first post ever goes out immediately). Otherwise the publisher waits
// until the newest published_at is at least Cadence old, then picks the
// candidate with the oldest updated_at, favoring posts that have been
// sitting in the queue untouched the longest.
func (a *AutoPublisher) Run(now time.Time) (*models.Post, error) {
	latest, err := a.posts.LatestPublishedAt()
	if err != nil {
		return nil, fmt.Errorf("auto-publish: %w", err)
	}

	orderByCreated := latest == nil
	if latest != nil && now.Sub(*latest) < Cadence {
		a.logger.Debug("auto-publish throttled",
			"latest_published_at", *latest,
			"next_eligible", latest.Add(Cadence))
		return nil, nil
	}

	candidate, err := a.posts.NextAutoPublishCandidate(orderByCreated)
	if err != nil {
		return nil, fmt.Errorf("auto-publish: %w", err)
	}
	if candidate == nil {
		a.logger.Debug("auto-publish queue empty")
		return nil, nil
	}

	candidate.IsPublished = true
	candidate.PublishedAt = &now
	if err := a.posts.SetWorkflowState(candidate); err != nil {
		return nil, fmt.Errorf("auto-publish %s: %w", candidate.Slug, err)
	}

	a.logger.Info("auto-published post",
		"post_id", candidate.ID,
		"slug", candidate.Slug,
		"published_at", now)
	return candidate, nil
}
