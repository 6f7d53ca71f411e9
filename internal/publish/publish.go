// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish implements the post publication workflow: who may flip
// which flag, and what each transition does to the post. Transitions are
// pure functions over *models.Post; persistence happens afterwards via
// PostStore.SetWorkflowState, so every flag write in the system passes
// through this policy.
package publish

import (
	"errors"
	"time"

	"roadbook/internal/models"
)

var (
	// ErrPermissionDenied is returned when the acting role may not perform
	// the requested transition.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotModerated is returned when publishing a post that has not
	// passed moderation.
	ErrNotModerated = errors.New("post is not moderated")
)

// State is a readable name for a post's position in the workflow.
type State string

const (
	// StateDraft: neither moderated nor published.
	StateDraft State = "draft"
	// StateModerated: approved but not yet published.
	StateModerated State = "moderated"
	// StateScheduled: published with a future timestamp, not yet visible.
	StateScheduled State = "scheduled"
	// StateLive: publicly visible.
	StateLive State = "live"
)

// StateOf classifies a post at the given instant.
func StateOf(p *models.Post, now time.Time) State {
	switch {
	case p.IsVisibleToPublic(now):
		return StateLive
	case p.IsPublished && p.IsModerated && p.PublishedAt != nil:
		return StateScheduled
	case p.IsModerated:
		return StateModerated
	default:
		return StateDraft
	}
}

// Moderate approves a post. Admin only.
func Moderate(actor models.Role, p *models.Post) error {
	if actor != models.RoleAdmin {
		return ErrPermissionDenied
	}
	p.IsModerated = true
	return nil
}

// Unmoderate revokes approval. Admin only. A published post loses public
// visibility immediately through the visibility predicate; is_published and
// published_at are left alone so re-moderating restores the previous state.
func Unmoderate(actor models.Role, p *models.Post) error {
	if actor != models.RoleAdmin {
		return ErrPermissionDenied
	}
	p.IsModerated = false
	return nil
}

// Publish makes a moderated post public. Editor or admin. The publication
// timestamp is stamped only when unset, so republishing after an unpublish
// keeps a fresh date while a scheduled date survives an early publish flip.
func Publish(actor models.Role, p *models.Post, now time.Time) error {
	if actor != models.RoleAdmin && actor != models.RoleEditor {
		return ErrPermissionDenied
	}
	if !p.IsModerated {
		return ErrNotModerated
	}
	p.IsPublished = true
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	return nil
}

// Unpublish withdraws a post from public view. Editor or admin. The
// publication timestamp is cleared so a later Publish stamps a new one;
// moderation status is untouched.
func Unpublish(actor models.Role, p *models.Post) error {
	if actor != models.RoleAdmin && actor != models.RoleEditor {
		return ErrPermissionDenied
	}
	p.IsPublished = false
	p.PublishedAt = nil
	return nil
}

// CanDelete reports whether a post may be deleted at the given instant.
// Live posts are permanent: their URLs must stay stable.
func CanDelete(p *models.Post, now time.Time) bool {
	return !p.IsVisibleToPublic(now)
}
