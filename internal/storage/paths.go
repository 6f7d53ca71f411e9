// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object keys are deterministic, derived from where the content lives on
// the site rather than from upload timestamps. Re-uploading a post's cover
// overwrites the previous object instead of orphaning it.

// CoverKey returns the object key for a post's cover image:
// post_images/<location_path>/<post_slug>/cover.<ext>.
func CoverKey(locationPath, postSlug, filename string) string {
	return fmt.Sprintf("post_images/%s/%s/cover%s", locationPath, postSlug, ext(filename))
}

// GalleryKey returns the object key for one post gallery image, indexed by
// position: post_images/<location_path>/<post_slug>/gallery-<n>.<ext>.
func GalleryKey(locationPath, postSlug string, index int, filename string) string {
	return fmt.Sprintf("post_images/%s/%s/gallery-%d%s", locationPath, postSlug, index, ext(filename))
}

// AboutCoverKey returns the object key for an about page's cover image.
// About pages have no slug path; they are keyed by ID.
func AboutCoverKey(pageID uuid.UUID, filename string) string {
	return fmt.Sprintf("about_images/%s/cover%s", pageID, ext(filename))
}

// AboutGalleryKey returns the object key for one about page gallery image.
func AboutGalleryKey(pageID uuid.UUID, index int, filename string) string {
	return fmt.Sprintf("about_images/%s/gallery-%d%s", pageID, index, ext(filename))
}

// ext returns the lowercased file extension including the dot, or empty
// when the filename has none.
func ext(filename string) string {
	return strings.ToLower(path.Ext(filename))
}
