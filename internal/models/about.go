// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AboutPage is a versioned "About" page. Any number of rows may exist but
// at most one is active at a time; activating a page deactivates the rest
// in the same transaction. The public /about route serves the active row.
type AboutPage struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	AuthorID        uuid.UUID `json:"author_id"`
	BodyMarkdown    string    `json:"body_markdown"`
	CoverImageKey   *string   `json:"cover_image_key,omitempty"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SEOTitle returns the meta title if set, falling back to the page title.
func (p *AboutPage) SEOTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title
}

// AboutPageImage is one gallery image attached to an about page.
type AboutPageImage struct {
	ID        uuid.UUID `json:"id"`
	PageID    uuid.UUID `json:"page_id"`
	ImageKey  string    `json:"image_key"`
	Caption   string    `json:"caption"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
