// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roadbook/internal/models"
)

// ViewStore records deduplicated page views. A (post, ip) pair counts at
// most once per trailing 24-hour window; within the window the request is
// a silent no-op.
type ViewStore struct {
	db *sql.DB
}

// NewViewStore returns a new ViewStore.
func NewViewStore(db *sql.DB) *ViewStore {
	return &ViewStore{db: db}
}

// Record registers a view for (post, ip) at the given instant. If an event
// for the pair exists within the dedup window nothing happens and Record
// returns false. Otherwise a view row is inserted and the post's
// views_count is incremented with a relative UPDATE in the same
// transaction. The counter never goes through read-modify-write, so
// concurrent requests for different IPs cannot lose increments.
//
// The existence check itself is check-then-insert: a duplicate slipping in
// between two simultaneous requests from one IP is an accepted
// approximation, not a safety violation.
func (s *ViewStore) Record(postID uuid.UUID, ip string, now time.Time) (bool, error) {
	cutoff := now.Add(-models.ViewDedupWindow)

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM post_views
			WHERE post_id = $1 AND ip_address = $2 AND created_at >= $3
		)
	`, postID, ip, cutoff).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check view exists: %w", err)
	}
	if exists {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO post_views (post_id, ip_address, created_at)
		VALUES ($1, $2, $3)
	`, postID, ip, now); err != nil {
		return false, fmt.Errorf("insert view: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE posts SET views_count = views_count + 1 WHERE id = $1
	`, postID); err != nil {
		return false, fmt.Errorf("increment views count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit view: %w", err)
	}
	return true, nil
}

// CountForPost returns the number of recorded view events for a post
// (the raw ledger, distinct from the denormalized views_count).
func (s *ViewStore) CountForPost(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM post_views WHERE post_id = $1
	`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}
