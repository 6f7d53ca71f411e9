// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"roadbook/internal/models"
	"roadbook/internal/slug"
)

// AboutStore manages the versioned "About" pages. Several rows may exist;
// the singleton invariant (at most one active) is enforced by running
// deactivate-then-activate inside one transaction, with a partial unique
// index in the schema as a backstop against racing activations.
type AboutStore struct {
	db *sql.DB
}

// NewAboutStore returns a new AboutStore.
func NewAboutStore(db *sql.DB) *AboutStore {
	return &AboutStore{db: db}
}

const aboutColumns = `id, title, slug, author_id, body_markdown, cover_image_key,
	meta_title, meta_description, is_active, created_at, updated_at`

// scanAboutPage scans a row into an AboutPage struct.
func scanAboutPage(scanner interface{ Scan(...any) error }) (*models.AboutPage, error) {
	var p models.AboutPage
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.BodyMarkdown, &p.CoverImageKey,
		&p.MetaTitle, &p.MetaDescription, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Active returns the currently active page, or nil when none is active.
func (s *AboutStore) Active() (*models.AboutPage, error) {
	row := s.db.QueryRow(`SELECT ` + aboutColumns + ` FROM about_pages WHERE is_active`)
	p, err := scanAboutPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active about page: %w", err)
	}
	return p, nil
}

// FindByID retrieves a page by ID. Returns nil if not found.
func (s *AboutStore) FindByID(id uuid.UUID) (*models.AboutPage, error) {
	row := s.db.QueryRow(`SELECT `+aboutColumns+` FROM about_pages WHERE id = $1`, id)
	p, err := scanAboutPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find about page by id: %w", err)
	}
	return p, nil
}

// List returns all pages, newest first.
func (s *AboutStore) List() ([]models.AboutPage, error) {
	rows, err := s.db.Query(`SELECT ` + aboutColumns + ` FROM about_pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list about pages: %w", err)
	}
	defer rows.Close()

	var items []models.AboutPage
	for rows.Next() {
		p, err := scanAboutPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan about page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Create inserts a new, inactive page. Activation is a separate explicit
// step so a half-written draft never becomes the public about page.
func (s *AboutStore) Create(p *models.AboutPage) (*models.AboutPage, error) {
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}

	row := s.db.QueryRow(`
		INSERT INTO about_pages (title, slug, author_id, body_markdown,
		                         cover_image_key, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+aboutColumns,
		p.Title, p.Slug, p.AuthorID, p.BodyMarkdown,
		p.CoverImageKey, p.MetaTitle, p.MetaDescription,
	)
	result, err := scanAboutPage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create about page: %w", err)
	}
	return result, nil
}

// Update modifies a page's content fields.
func (s *AboutStore) Update(p *models.AboutPage) error {
	_, err := s.db.Exec(`
		UPDATE about_pages SET
			title = $1, slug = $2, body_markdown = $3, cover_image_key = $4,
			meta_title = $5, meta_description = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Title, p.Slug, p.BodyMarkdown, p.CoverImageKey,
		p.MetaTitle, p.MetaDescription, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update about page: %w", err)
	}
	return nil
}

// Activate makes the given page the single active one. Every other page is
// deactivated in the same transaction, so no moment exists where two pages
// are active.
func (s *AboutStore) Activate(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE about_pages SET is_active = FALSE WHERE id <> $1`, id); err != nil {
		return fmt.Errorf("deactivate about pages: %w", err)
	}

	res, err := tx.Exec(`UPDATE about_pages SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate about page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a page. The active page is protected (ErrPageActive):
// deleting it would leave the public /about route without content.
func (s *AboutStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM about_pages WHERE id = $1 AND NOT is_active`, id)
	if err != nil {
		return fmt.Errorf("delete about page: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete about page rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := s.FindByID(id)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPageActive
		}
	}
	return nil
}
