// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a node in the hierarchical geography tree (country → region
// → city → district, nesting depth is unbounded). Slugs are unique across
// the whole tree, not just among siblings; that is what allows a location
// to be identified from the last segment of its URL path alone.
type Location struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children  []Location `json:"children,omitempty"`
	Depth     int        `json:"depth"`
	PostCount int        `json:"post_count"`
}

// Crumb is one element of a breadcrumb trail: a label and the URL it
// resolves to. The current page is rendered without a URL by convention,
// which the caller controls by passing an empty URL.
type Crumb struct {
	Label string
	URL   string
}
