// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"

	"roadbook/internal/models"
)

// RatingStore manages per-IP post ratings. One row exists per (post, ip);
// a second submission from the same address overwrites the score in place.
type RatingStore struct {
	db *sql.DB
}

// NewRatingStore returns a new RatingStore.
func NewRatingStore(db *sql.DB) *RatingStore {
	return &RatingStore{db: db}
}

// Upsert records a score for (post, ip). The write is a single
// INSERT … ON CONFLICT DO UPDATE keyed by the unique constraint, so two
// concurrent submissions can never produce two rows. created_at keeps the
// timestamp of the first rating; only the score is overwritten.
func (s *RatingStore) Upsert(postID uuid.UUID, ip string, score int) error {
	if !models.ValidScore(score) {
		return ErrInvalidScore
	}

	_, err := s.db.Exec(`
		INSERT INTO post_ratings (post_id, ip_address, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, ip_address) DO UPDATE SET score = EXCLUDED.score
	`, postID, ip, score)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// Average returns the mean score for a post rounded to one decimal place,
// or nil when the post has no ratings.
func (s *RatingStore) Average(postID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT AVG(score) FROM post_ratings WHERE post_id = $1
	`, postID).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	rounded := math.Round(avg.Float64*10) / 10
	return &rounded, nil
}

// AverageFor returns the rounded mean score for each of the given posts in
// one query. Posts with no ratings are absent from the map.
func (s *RatingStore) AverageFor(postIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(postIDs))
	for i, id := range postIDs {
		ids[i] = id.String()
	}

	rows, err := s.db.Query(`
		SELECT post_id, AVG(score) FROM post_ratings
		WHERE post_id = ANY($1::uuid[])
		GROUP BY post_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("average ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]float64, len(postIDs))
	for rows.Next() {
		var id uuid.UUID
		var avg float64
		if err := rows.Scan(&id, &avg); err != nil {
			return nil, fmt.Errorf("scan average rating: %w", err)
		}
		out[id] = math.Round(avg*10) / 10
	}
	return out, rows.Err()
}

// Count returns how many ratings a post has.
func (s *RatingStore) Count(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM post_ratings WHERE post_id = $1
	`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}

// ListForPost returns a post's ratings newest first, for the admin review page.
func (s *RatingStore) ListForPost(postID uuid.UUID) ([]models.Rating, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, ip_address, score, created_at
		FROM post_ratings WHERE post_id = $1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var items []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.PostID, &r.IPAddress, &r.Score, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
