// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"roadbook/internal/cache"
	"roadbook/internal/database"
	"roadbook/internal/middleware"
	"roadbook/internal/models"
	"roadbook/internal/render"
	"roadbook/internal/session"
	"roadbook/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "roadbook")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "roadbook")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Renderer  *render.Renderer
	Sessions  *session.Store
	Users     *store.UserStore
	Locations *store.LocationStore
	Posts     *store.PostStore
	Tags      *store.TagStore
	Ratings   *store.RatingStore
	Views     *store.ViewStore
	Abouts    *store.AboutStore
	Gallery   *store.GalleryStore
	PageCache *cache.PageCache
	Admin     *Admin
	Auth      *Auth
	Public    *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk)
	users := store.NewUserStore(db)
	locations := store.NewLocationStore(db)
	posts := store.NewPostStore(db)
	tags := store.NewTagStore(db)
	ratings := store.NewRatingStore(db)
	views := store.NewViewStore(db)
	abouts := store.NewAboutStore(db)
	gallery := store.NewGalleryStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)

	admin := NewAdmin(renderer, locations, posts, tags, abouts, users, gallery, ratings, nil, pageCache)
	auth := NewAuth(renderer, sessions, users)
	public := NewPublic(renderer, locations, posts, tags, ratings, views, abouts, gallery, nil, pageCache, "http://localhost:8080")

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		Users:     users,
		Locations: locations,
		Posts:     posts,
		Tags:      tags,
		Ratings:   ratings,
		Views:     views,
		Abouts:    abouts,
		Gallery:   gallery,
		PageCache: pageCache,
		Admin:     admin,
		Auth:      auth,
		Public:    public,
	}
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, role models.Role) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       "tester@example.com",
		DisplayName: "Test User",
		Role:        string(role),
		TwoFADone:   true,
	}
}

// withSession attaches session data to a request context.
func withSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

// withChiParams attaches chi URL parameters (and optionally a session) to
// a request. Pairs alternate key, value.
func withChiParams(r *http.Request, sess *session.Data, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return r.WithContext(ctx)
}

// formRequest builds a POST request with URL-encoded form values.
func formRequest(target string, values url.Values) *http.Request {
	r, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// testAuthorID returns a valid user ID for content creation, creating a
// throwaway user when the database is empty.
func testAuthorID(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := env.DB.QueryRow("SELECT id FROM users LIMIT 1").Scan(&id)
	if err == nil {
		return id
	}
	user, err := env.Users.Create("handler-author@example.com", "test-password-123", "Handler Author", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	t.Cleanup(func() { env.Users.Delete(user.ID) })
	return user.ID
}

// testLocation creates a root location for a test, with cleanup of any
// posts left under it.
func testLocation(t *testing.T, env *testEnv, slug string) *models.Location {
	t.Helper()
	loc, err := env.Locations.Create(&models.Location{Name: "Test " + slug, Slug: slug})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE location_id = $1", loc.ID)
		env.DB.Exec("DELETE FROM locations WHERE id = $1", loc.ID)
	})
	return loc
}

// testPost creates a post in the given location, cleaned up afterwards.
func testPost(t *testing.T, env *testEnv, loc *models.Location, slug string) *models.Post {
	t.Helper()
	post, err := env.Posts.Create(&models.Post{
		Title:        "Post " + slug,
		Slug:         slug,
		AuthorID:     testAuthorID(t, env),
		LocationID:   loc.ID,
		BodyMarkdown: "Hello from **" + slug + "**.",
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID)
	})
	return post
}

// makeLive flips a post to publicly visible, bypassing the policy.
func makeLive(t *testing.T, env *testEnv, post *models.Post) {
	t.Helper()
	now := time.Now().Add(-time.Minute)
	post.IsModerated = true
	post.IsPublished = true
	post.PublishedAt = &now
	if err := env.Posts.SetWorkflowState(post); err != nil {
		t.Fatalf("set workflow state: %v", err)
	}
}
