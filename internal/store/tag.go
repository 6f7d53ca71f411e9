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
	"roadbook/internal/slug"
)

// TagStore manages the flat tag vocabulary.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Create inserts a new tag, deriving the slug from the name when not supplied.
func (s *TagStore) Create(t *models.Tag) (*models.Tag, error) {
	if t.Slug == "" {
		t.Slug = slug.Generate(t.Name)
	}

	row := s.db.QueryRow(`
		INSERT INTO tags (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug, created_at
	`, t.Name, t.Slug)

	var result models.Tag
	if err := row.Scan(&result.ID, &result.Name, &result.Slug, &result.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &result, nil
}

// Update renames a tag.
func (s *TagStore) Update(t *models.Tag) error {
	_, err := s.db.Exec(`UPDATE tags SET name = $1, slug = $2 WHERE id = $3`, t.Name, t.Slug, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update tag: %w", err)
	}
	return nil
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slugVal string) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT id, name, slug, created_at FROM tags WHERE slug = $1`, slugVal)

	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return &t, nil
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(id uuid.UUID) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT id, name, slug, created_at FROM tags WHERE id = $1`, id)

	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return &t, nil
}

// List returns all tags with their usage counts, ordered by name. The count
// covers all posts, drafts included; the public tag index filters separately.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id) AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListVisible returns tags attached to at least one publicly visible post,
// with the visible post count, ordered by name. Backs the public /tags index.
func (s *TagStore) ListVisible(now time.Time) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(p.id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		JOIN posts p ON p.id = pt.post_id
		WHERE `+visibleWhere+`$1
		GROUP BY t.id
		ORDER BY t.name
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list visible tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Delete removes a tag. Post associations go with it via ON DELETE CASCADE
// on post_tags; the posts themselves are untouched.
func (s *TagStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
