// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"roadbook/internal/database"
	"roadbook/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "roadbook")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "roadbook")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthorID returns a valid user ID for post creation, creating a
// throwaway author if the database has none.
func testAuthorID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.QueryRow("SELECT id FROM users LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		email := "test-author-" + uuid.NewString()[:8] + "@roadbook.local"
		t.Cleanup(func() { cleanUsers(t, db, email) })
		u, cerr := NewUserStore(db).Create(email, "test-password", "Test Author", models.RoleAuthor)
		if cerr != nil {
			t.Fatalf("create test author: %v", cerr)
		}
		return u.ID
	}
	if err != nil {
		t.Fatalf("query test author: %v", err)
	}
	return id
}

// testLocation creates a root location with a unique slug, registering
// cleanup of the node and any posts created under it.
func testLocation(t *testing.T, db *sql.DB) *models.Location {
	t.Helper()
	slug := "test-loc-" + uuid.NewString()[:8]
	loc, err := NewLocationStore(db).Create(&models.Location{Name: "Test Location", Slug: slug})
	if err != nil {
		t.Fatalf("create test location: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE location_id = $1", loc.ID)
		cleanLocations(t, db, slug)
	})
	return loc
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

// cleanLocations removes test locations by slug, children first. Call in
// t.Cleanup() in reverse creation order when nesting.
func cleanLocations(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM locations WHERE slug = $1", slug)
	}
}

// cleanTags removes test tags by slug. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM tags WHERE slug = $1", slug)
	}
}

// cleanAboutPages removes test about pages by slug. Call in t.Cleanup().
func cleanAboutPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM about_pages WHERE slug = $1", slug)
	}
}
