// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import "roadbook/internal/models"

// Field names accepted by CanSetField.
const (
	FieldModerated   = "is_moderated"
	FieldPublished   = "is_published"
	FieldPublishedAt = "published_at"
	FieldContent     = "content"
)

// CanSetField reports whether a role may write a given post field through
// the admin forms. The workflow flags are permission-gated; everything else
// is editable by any signed-in author. is_published additionally requires
// the post to be moderated already, mirroring the Publish transition.
func CanSetField(actor models.Role, field string, p *models.Post) bool {
	switch field {
	case FieldModerated:
		return actor == models.RoleAdmin
	case FieldPublished, FieldPublishedAt:
		if actor != models.RoleAdmin && actor != models.RoleEditor {
			return false
		}
		return p.IsModerated
	default:
		return true
	}
}
