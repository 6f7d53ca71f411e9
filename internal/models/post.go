// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a travel-blog entry. Every post belongs to exactly one
// location in the geography tree and carries two independent workflow
// flags: IsModerated (approval gate, admin-controlled) and IsPublished
// (author-visible publication switch, gated on moderation).
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	AuthorID        uuid.UUID  `json:"author_id"`
	LocationID      uuid.UUID  `json:"location_id"`
	BodyMarkdown    string     `json:"body_markdown"`
	CoverImageKey   *string    `json:"cover_image_key,omitempty"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	ViewsCount      int64      `json:"views_count"`
	IsPublished     bool       `json:"is_published"`
	IsModerated     bool       `json:"is_moderated"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Location      *Location `json:"location,omitempty"`
	Tags          []Tag     `json:"tags,omitempty"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	RatingCount   int       `json:"rating_count"`
}

// IsVisibleToPublic reports whether the post may be shown to anonymous
// readers at the given instant. All four conjuncts are required: the
// publication switch, the moderation gate, a publication timestamp, and
// that timestamp having elapsed.
func (p *Post) IsVisibleToPublic(now time.Time) bool {
	return p.IsPublished &&
		p.IsModerated &&
		p.PublishedAt != nil &&
		!p.PublishedAt.After(now)
}

// SEOTitle returns the meta title if set, falling back to the post title.
func (p *Post) SEOTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title
}

// PostImage is one gallery image attached to a post, ordered for display.
type PostImage struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	ImageKey  string    `json:"image_key"`
	Caption   string    `json:"caption"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
