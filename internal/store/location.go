// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roadbook/internal/models"
	"roadbook/internal/slug"
)

// LocationStore manages the hierarchical geography tree. Nodes keep a plain
// parent reference; paths are derived with recursive CTEs rather than stored,
// so a rename never leaves stale materialized paths behind.
type LocationStore struct {
	db *sql.DB
}

// NewLocationStore returns a new LocationStore.
func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

const locationColumns = `id, name, slug, description, parent_id, created_at, updated_at`

// scanLocation scans a row into a Location struct.
func scanLocation(scanner interface{ Scan(...any) error }) (*models.Location, error) {
	var l models.Location
	err := scanner.Scan(
		&l.ID, &l.Name, &l.Slug, &l.Description,
		&l.ParentID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new tree node. The slug is derived from the name when not
// supplied. Returns ErrDuplicateSlug if the slug exists anywhere in the
// forest; uniqueness is tree-wide, enforced by the DB constraint.
func (s *LocationStore) Create(l *models.Location) (*models.Location, error) {
	if l.Slug == "" {
		l.Slug = slug.Generate(l.Name)
	}

	row := s.db.QueryRow(`
		INSERT INTO locations (name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+locationColumns,
		l.Name, l.Slug, l.Description, l.ParentID,
	)
	result, err := scanLocation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create location: %w", err)
	}
	return result, nil
}

// Update modifies a node's name, slug, and description. Re-parenting is not
// exposed; the tree shape is fixed at creation time.
func (s *LocationStore) Update(l *models.Location) error {
	_, err := s.db.Exec(`
		UPDATE locations SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`, l.Name, l.Slug, l.Description, l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// FindByID retrieves a location by ID. Returns nil if not found.
func (s *LocationStore) FindByID(id uuid.UUID) (*models.Location, error) {
	row := s.db.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location by id: %w", err)
	}
	return l, nil
}

// FindBySlug retrieves a location by its globally unique slug. Returns nil
// if not found.
func (s *LocationStore) FindBySlug(slugVal string) (*models.Location, error) {
	row := s.db.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE slug = $1`, slugVal)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location by slug: %w", err)
	}
	return l, nil
}

// Ancestry returns the chain of nodes from the root ancestor down to and
// including the given node, in root→node order.
func (s *LocationStore) Ancestry(id uuid.UUID) ([]models.Location, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE chain AS (
			SELECT `+locationColumns+`, 0 AS dist FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id, l.name, l.slug, l.description, l.parent_id, l.created_at, l.updated_at, c.dist + 1
			FROM locations l
			JOIN chain c ON l.id = c.parent_id
		)
		SELECT `+locationColumns+` FROM chain ORDER BY dist DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("location ancestry: %w", err)
	}
	defer rows.Close()

	var chain []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ancestry: %w", err)
		}
		chain = append(chain, *l)
	}
	return chain, rows.Err()
}

// PathSlugs computes the canonical slug path of every node in one recursive
// query, keyed by location ID. Listing pages and the sitemap use this
// instead of walking Ancestry once per node.
func (s *LocationStore) PathSlugs() (map[uuid.UUID]string, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE tree AS (
			SELECT id, slug::text AS path FROM locations WHERE parent_id IS NULL
			UNION ALL
			SELECT l.id, t.path || '/' || l.slug
			FROM locations l
			JOIN tree t ON l.parent_id = t.id
		)
		SELECT id, path FROM tree
	`)
	if err != nil {
		return nil, fmt.Errorf("location paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("scan location path: %w", err)
		}
		paths[id] = path
	}
	return paths, rows.Err()
}

// PathSlug returns the canonical /-joined slug path from the root ancestor
// to the node, e.g. "rossiya/tatarstan/kazan". O(depth).
func (s *LocationStore) PathSlug(id uuid.UUID) (string, error) {
	chain, err := s.Ancestry(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chain))
	for i, l := range chain {
		parts[i] = l.Slug
	}
	return strings.Join(parts, "/"), nil
}

// Resolve maps a /-joined slug path to exactly one tree node. The last
// segment identifies the node (slugs are globally unique); the node's true
// path is then recomputed and must equal the input exactly, which guards
// against stale or fabricated prefixes. Any mismatch is ErrNotFound, never
// a partial or ambiguous match.
func (s *LocationStore) Resolve(path string) (*models.Location, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrNotFound
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	loc, err := s.FindBySlug(last)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrNotFound
	}

	truePath, err := s.PathSlug(loc.ID)
	if err != nil {
		return nil, err
	}
	if truePath != path {
		return nil, ErrNotFound
	}
	return loc, nil
}

// Breadcrumbs returns the trail root→node, each ancestor paired with its
// resolved location URL. The final element is the node itself; callers
// render it without a link per the current-page convention.
func (s *LocationStore) Breadcrumbs(id uuid.UUID) ([]models.Crumb, error) {
	chain, err := s.Ancestry(id)
	if err != nil {
		return nil, err
	}

	crumbs := make([]models.Crumb, 0, len(chain))
	var prefix []string
	for _, l := range chain {
		prefix = append(prefix, l.Slug)
		crumbs = append(crumbs, models.Crumb{
			Label: l.Name,
			URL:   "/location/" + strings.Join(prefix, "/"),
		})
	}
	return crumbs, nil
}

// DescendantsAndSelf returns the node plus every node beneath it, used to
// aggregate posts across a subtree ("all posts under Russia").
func (s *LocationStore) DescendantsAndSelf(id uuid.UUID) ([]models.Location, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE subtree AS (
			SELECT `+locationColumns+` FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id, l.name, l.slug, l.description, l.parent_id, l.created_at, l.updated_at
			FROM locations l
			JOIN subtree s ON l.parent_id = s.id
		)
		SELECT `+locationColumns+` FROM subtree
	`, id)
	if err != nil {
		return nil, fmt.Errorf("location subtree: %w", err)
	}
	defer rows.Close()

	var nodes []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtree: %w", err)
		}
		nodes = append(nodes, *l)
	}
	return nodes, rows.Err()
}

// Roots returns all root nodes ordered by name.
func (s *LocationStore) Roots() ([]models.Location, error) {
	return s.queryMany(`SELECT ` + locationColumns + ` FROM locations WHERE parent_id IS NULL ORDER BY name`)
}

// Children returns a node's direct children ordered by name.
func (s *LocationStore) Children(id uuid.UUID) ([]models.Location, error) {
	return s.queryMany(`SELECT `+locationColumns+` FROM locations WHERE parent_id = $1 ORDER BY name`, id)
}

// List returns every location with its direct post count, ordered by name.
func (s *LocationStore) List() ([]models.Location, error) {
	rows, err := s.db.Query(`
		SELECT l.id, l.name, l.slug, l.description, l.parent_id, l.created_at, l.updated_at,
		       COUNT(p.id) AS post_count
		FROM locations l
		LEFT JOIN posts p ON p.location_id = l.id
		GROUP BY l.id
		ORDER BY l.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var items []models.Location
	for rows.Next() {
		var l models.Location
		err := rows.Scan(
			&l.ID, &l.Name, &l.Slug, &l.Description,
			&l.ParentID, &l.CreatedAt, &l.UpdatedAt,
			&l.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// Tree returns locations as a nested tree structure, siblings ordered by name.
func (s *LocationStore) Tree() ([]models.Location, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// FlatTree returns locations as a flat list ordered for display, with Depth
// set for indentation. Useful for <select> dropdowns.
func (s *LocationStore) FlatTree() ([]models.Location, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	var result []models.Location
	flattenTree(tree, &result)
	return result, nil
}

// Delete removes a location. Deletion is blocked while any post references
// the node (ErrLocationInUse); child locations also block it via the
// self-referencing RESTRICT constraint.
func (s *LocationStore) Delete(id uuid.UUID) error {
	var postCount int
	err := s.db.QueryRow(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id FROM locations l JOIN subtree s ON l.parent_id = s.id
		)
		SELECT COUNT(*) FROM posts WHERE location_id IN (SELECT id FROM subtree)
	`, id).Scan(&postCount)
	if err != nil {
		return fmt.Errorf("count posts under location: %w", err)
	}
	if postCount > 0 {
		return ErrLocationInUse
	}

	if _, err := s.db.Exec(`DELETE FROM locations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}

// queryMany runs a query returning plain location rows.
func (s *LocationStore) queryMany(query string, args ...any) ([]models.Location, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var items []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Location, parentID *uuid.UUID, depth int) []models.Location {
	var result []models.Location
	for _, l := range flat {
		if ptrEqual(l.ParentID, parentID) {
			l.Depth = depth
			l.Children = buildTree(flat, &l.ID, depth+1)
			result = append(result, l)
		}
	}
	return result
}

// flattenTree walks a location tree depth-first, appending to result.
func flattenTree(locs []models.Location, result *[]models.Location) {
	for _, l := range locs {
		*result = append(*result, l)
		if len(l.Children) > 0 {
			flattenTree(l.Children, result)
		}
	}
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
