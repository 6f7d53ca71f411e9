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

// PostStore handles all post-related database operations. Public listing
// methods filter by the visibility predicate (published ∧ moderated ∧
// published_at ≤ now) directly in SQL so a hidden post can never leak
// through a listing.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, author_id, location_id, body_markdown,
	cover_image_key, meta_title, meta_description, views_count,
	is_published, is_moderated, published_at, created_at, updated_at`

// visibleWhere is the SQL form of models.Post.IsVisibleToPublic. The
// placeholder index for "now" is interpolated by callers.
const visibleWhere = `is_published AND is_moderated AND published_at IS NOT NULL AND published_at <= `

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.LocationID, &p.BodyMarkdown,
		&p.CoverImageKey, &p.MetaTitle, &p.MetaDescription, &p.ViewsCount,
		&p.IsPublished, &p.IsModerated, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new post. The slug is derived from the title when not
// supplied; a duplicate slug anywhere in the table is ErrDuplicateSlug.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (title, slug, author_id, location_id, body_markdown,
		                   cover_image_key, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.AuthorID, p.LocationID, p.BodyMarkdown,
		p.CoverImageKey, p.MetaTitle, p.MetaDescription,
	)
	result, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies a post's content fields. Workflow flags are written
// through SetWorkflowState so every transition passes the publish policy.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, location_id = $3, body_markdown = $4,
			cover_image_key = $5, meta_title = $6, meta_description = $7,
			updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Slug, p.LocationID, p.BodyMarkdown,
		p.CoverImageKey, p.MetaTitle, p.MetaDescription, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// SetWorkflowState persists the publication flags after a policy-checked
// transition. It deliberately does not touch updated_at: the auto-publish
// queue is ordered by updated_at, and a moderation flip should not push a
// post to the back of it.
func (s *PostStore) SetWorkflowState(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET is_published = $1, is_moderated = $2, published_at = $3
		WHERE id = $4
	`, p.IsPublished, p.IsModerated, p.PublishedAt, p.ID)
	if err != nil {
		return fmt.Errorf("set post workflow state: %w", err)
	}
	return nil
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlugAndLocation retrieves a post by its slug within a specific
// location. Post slugs are globally unique, but detail URLs carry the
// location path, so the location must match too. Returns nil if not found.
func (s *PostStore) FindBySlugAndLocation(slugVal string, locationID uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts WHERE slug = $1 AND location_id = $2
	`, slugVal, locationID)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug and location: %w", err)
	}
	return p, nil
}

// ListVisible returns publicly visible posts, newest first, paginated.
func (s *PostStore) ListVisible(now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryMany(`
		SELECT `+postColumns+` FROM posts
		WHERE `+visibleWhere+`$1
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3
	`, now, limit, offset)
}

// CountVisible returns the number of publicly visible posts.
func (s *PostStore) CountVisible(now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE `+visibleWhere+`$1`, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count visible posts: %w", err)
	}
	return count, nil
}

// ListVisibleInLocations returns visible posts whose location is any of the
// given IDs (a resolved subtree), newest first, paginated.
func (s *PostStore) ListVisibleInLocations(locationIDs []uuid.UUID, now time.Time, limit, offset int) ([]models.Post, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(locationIDs))
	for i, id := range locationIDs {
		ids[i] = id.String()
	}
	return s.queryMany(`
		SELECT `+postColumns+` FROM posts
		WHERE location_id = ANY($1::uuid[]) AND `+visibleWhere+`$2
		ORDER BY published_at DESC
		LIMIT $3 OFFSET $4
	`, ids, now, limit, offset)
}

// ListVisibleByTag returns visible posts carrying the given tag, newest first.
func (s *PostStore) ListVisibleByTag(tagID uuid.UUID, now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryMany(`
		SELECT `+postColumns+` FROM posts
		WHERE id IN (SELECT post_id FROM post_tags WHERE tag_id = $1)
		  AND `+visibleWhere+`$2
		ORDER BY published_at DESC
		LIMIT $3 OFFSET $4
	`, tagID, now, limit, offset)
}

// ListBest returns visible posts that have at least one rating, ordered by
// average rating, ties broken by view count.
func (s *PostStore) ListBest(now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryMany(`
		SELECT `+postColumns+` FROM posts
		WHERE `+visibleWhere+`$1
		  AND id IN (SELECT post_id FROM post_ratings)
		ORDER BY (SELECT AVG(score) FROM post_ratings r WHERE r.post_id = posts.id) DESC,
		         views_count DESC
		LIMIT $2 OFFSET $3
	`, now, limit, offset)
}

// ListPopular returns the top visible posts by view count.
func (s *PostStore) ListPopular(now time.Time, limit int) ([]models.Post, error) {
	return s.queryMany(`
		SELECT `+postColumns+` FROM posts
		WHERE `+visibleWhere+`$1
		ORDER BY views_count DESC, published_at DESC
		LIMIT $2
	`, now, limit)
}

// ListAll returns every post for the admin index, newest created first.
func (s *PostStore) ListAll() ([]models.Post, error) {
	return s.queryMany(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
}

// Delete removes a post unless it is publicly live. The guard runs inside
// the DELETE itself so a post cannot slip into visibility between a check
// and the delete.
func (s *PostStore) Delete(id uuid.UUID, now time.Time) error {
	res, err := s.db.Exec(`
		DELETE FROM posts
		WHERE id = $1 AND NOT (`+visibleWhere+`$2)
	`, id, now)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		// Either the post is live or it never existed; distinguish.
		existing, err := s.FindByID(id)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPostLive
		}
	}
	return nil
}

// LatestPublishedAt returns the most recent published_at among published
// posts, or nil when nothing has ever been published. Drives the
// auto-publish cadence throttle.
func (s *PostStore) LatestPublishedAt() (*time.Time, error) {
	var ts sql.NullTime
	err := s.db.QueryRow(`
		SELECT MAX(published_at) FROM posts
		WHERE is_published AND published_at IS NOT NULL
	`).Scan(&ts)
	if err != nil {
		return nil, fmt.Errorf("latest published at: %w", err)
	}
	if !ts.Valid {
		return nil, nil
	}
	return &ts.Time, nil
}

// NextAutoPublishCandidate returns the moderated-but-unpublished post that
// the auto-publish policy should pick: ordered by created_at for the very
// first publication, by updated_at afterwards. Returns nil when the queue
// is empty.
func (s *PostStore) NextAutoPublishCandidate(orderByCreated bool) (*models.Post, error) {
	orderCol := "updated_at"
	if orderByCreated {
		orderCol = "created_at"
	}
	row := s.db.QueryRow(`
		SELECT ` + postColumns + ` FROM posts
		WHERE is_moderated AND NOT is_published
		ORDER BY ` + orderCol + ` ASC
		LIMIT 1
	`)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next auto-publish candidate: %w", err)
	}
	return p, nil
}

// SetTags replaces a post's tag set in one transaction.
func (s *PostStore) SetTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID); err != nil {
			return fmt.Errorf("insert post tag: %w", err)
		}
	}

	return tx.Commit()
}

// TagsFor returns a post's tags ordered by name.
func (s *PostStore) TagsFor(postID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("tags for post: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// queryMany runs a query returning post rows.
func (s *PostStore) queryMany(query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
