// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"roadbook/internal/models"
)

// GalleryStore manages gallery images for posts and about pages. Image rows
// hold only object-storage keys; bytes live in the bucket.
type GalleryStore struct {
	db *sql.DB
}

// NewGalleryStore returns a new GalleryStore.
func NewGalleryStore(db *sql.DB) *GalleryStore {
	return &GalleryStore{db: db}
}

// AddPostImage attaches an image to a post at the end of its gallery.
func (s *GalleryStore) AddPostImage(img *models.PostImage) (*models.PostImage, error) {
	row := s.db.QueryRow(`
		INSERT INTO post_images (post_id, image_key, caption, sort_order)
		VALUES ($1, $2, $3,
		        COALESCE((SELECT MAX(sort_order) + 1 FROM post_images WHERE post_id = $1), 0))
		RETURNING id, post_id, image_key, caption, sort_order, created_at
	`, img.PostID, img.ImageKey, img.Caption)

	var result models.PostImage
	err := row.Scan(&result.ID, &result.PostID, &result.ImageKey,
		&result.Caption, &result.SortOrder, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add post image: %w", err)
	}
	return &result, nil
}

// PostImages returns a post's gallery in display order.
func (s *GalleryStore) PostImages(postID uuid.UUID) ([]models.PostImage, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, image_key, caption, sort_order, created_at
		FROM post_images WHERE post_id = $1
		ORDER BY sort_order, created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post images: %w", err)
	}
	defer rows.Close()

	var items []models.PostImage
	for rows.Next() {
		var img models.PostImage
		err := rows.Scan(&img.ID, &img.PostID, &img.ImageKey,
			&img.Caption, &img.SortOrder, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan post image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// FindPostImage retrieves one gallery image. Returns nil if not found.
func (s *GalleryStore) FindPostImage(id uuid.UUID) (*models.PostImage, error) {
	row := s.db.QueryRow(`
		SELECT id, post_id, image_key, caption, sort_order, created_at
		FROM post_images WHERE id = $1
	`, id)

	var img models.PostImage
	err := row.Scan(&img.ID, &img.PostID, &img.ImageKey,
		&img.Caption, &img.SortOrder, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post image: %w", err)
	}
	return &img, nil
}

// DeletePostImage removes an image row. The caller is responsible for the
// stored object.
func (s *GalleryStore) DeletePostImage(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM post_images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post image: %w", err)
	}
	return nil
}

// AddAboutImage attaches an image to an about page at the end of its gallery.
func (s *GalleryStore) AddAboutImage(img *models.AboutPageImage) (*models.AboutPageImage, error) {
	row := s.db.QueryRow(`
		INSERT INTO about_page_images (page_id, image_key, caption, sort_order)
		VALUES ($1, $2, $3,
		        COALESCE((SELECT MAX(sort_order) + 1 FROM about_page_images WHERE page_id = $1), 0))
		RETURNING id, page_id, image_key, caption, sort_order, created_at
	`, img.PageID, img.ImageKey, img.Caption)

	var result models.AboutPageImage
	err := row.Scan(&result.ID, &result.PageID, &result.ImageKey,
		&result.Caption, &result.SortOrder, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add about page image: %w", err)
	}
	return &result, nil
}

// AboutImages returns an about page's gallery in display order.
func (s *GalleryStore) AboutImages(pageID uuid.UUID) ([]models.AboutPageImage, error) {
	rows, err := s.db.Query(`
		SELECT id, page_id, image_key, caption, sort_order, created_at
		FROM about_page_images WHERE page_id = $1
		ORDER BY sort_order, created_at
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list about page images: %w", err)
	}
	defer rows.Close()

	var items []models.AboutPageImage
	for rows.Next() {
		var img models.AboutPageImage
		err := rows.Scan(&img.ID, &img.PageID, &img.ImageKey,
			&img.Caption, &img.SortOrder, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan about page image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// DeleteAboutImage removes an about-page image row.
func (s *GalleryStore) DeleteAboutImage(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM about_page_images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete about page image: %w", err)
	}
	return nil
}
