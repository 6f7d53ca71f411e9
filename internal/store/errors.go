// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all Roadbook entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups return (nil, nil) when a row does not exist; Resolve is the
// exception and returns ErrNotFound because a path mismatch must never be
// mistaken for a partial match.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by path resolution when no location matches
	// the requested path exactly.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug is returned when a creation would violate the
	// tree-wide (or table-wide) slug uniqueness constraint.
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrInvalidScore is returned when a rating score is outside [1,5].
	ErrInvalidScore = errors.New("score must be between 1 and 5")

	// ErrLocationInUse is returned when deleting a location that still has
	// posts (directly or via child locations holding the FK).
	ErrLocationInUse = errors.New("location has posts and cannot be deleted")

	// ErrPostLive is returned when deleting a post that has crossed into
	// public visibility; published URLs must stay stable.
	ErrPostLive = errors.New("live posts cannot be deleted")

	// ErrPageActive is returned when deleting the currently active about page.
	ErrPageActive = errors.New("the active about page cannot be deleted")
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations (class 23, integrity constraint violation).
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, used to map driver errors onto ErrDuplicateSlug.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
