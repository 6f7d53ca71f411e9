// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating score bounds. Scores outside this range are rejected at write time.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one reader's score for a post, keyed by IP address. At most one
// row exists per (post, ip) pair; re-rating overwrites the score in place.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	IPAddress string    `json:"ip_address"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidScore reports whether a submitted score is within [MinScore, MaxScore].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// View records a deduplicated page view: at most one view per (post, ip)
// within a trailing 24-hour window counts toward the post's views_count.
type View struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewDedupWindow is how long a (post, ip) pair stays deduplicated.
const ViewDedupWindow = 24 * time.Hour
