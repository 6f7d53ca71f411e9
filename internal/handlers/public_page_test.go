// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"roadbook/internal/models"
)

func TestHomeListsVisiblePost(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-home-loc")
	post := testPost(t, env, loc, "pub-home-post")
	makeLive(t, env, post)

	rec := httptest.NewRecorder()
	env.Public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), post.Title) {
		t.Error("front page missing the visible post")
	}

	// Second anonymous request is served from the page cache and still
	// carries the post.
	rec = httptest.NewRecorder()
	env.Public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), post.Title) {
		t.Error("cached front page missing the visible post")
	}
}

func TestHomeHidesDrafts(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-draft-loc")
	post := testPost(t, env, loc, "pub-draft-post")

	// Bust the cache entry left by other tests.
	env.PageCache.InvalidateAll(context.Background())

	rec := httptest.NewRecorder()
	env.Public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(rec.Body.String(), post.Title) {
		t.Error("draft post leaked into the front page")
	}
}

func TestPostDetailRecordsDedupedView(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-view-loc")
	post := testPost(t, env, loc, "pub-view-post")
	makeLive(t, env, post)

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/post/"+loc.Slug+"/"+post.Slug, nil)
		req = withChiParams(req, nil, "*", loc.Slug+"/"+post.Slug)
		rec := httptest.NewRecorder()
		env.Public.PostDetail(rec, req)
		return rec
	}

	rec := get()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), post.Title) {
		t.Error("post page missing title")
	}

	// A second visit from the same IP within the window does not count.
	get()

	fresh, err := env.Posts.FindByID(post.ID)
	if err != nil {
		t.Fatalf("find post: %v", err)
	}
	if fresh.ViewsCount != 1 {
		t.Errorf("views_count = %d, want 1", fresh.ViewsCount)
	}
}

func TestPostDetailHiddenPost(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-hidden-loc")
	post := testPost(t, env, loc, "pub-hidden-post")

	req := httptest.NewRequest(http.MethodGet, "/post/"+loc.Slug+"/"+post.Slug, nil)
	req = withChiParams(req, nil, "*", loc.Slug+"/"+post.Slug)
	rec := httptest.NewRecorder()
	env.Public.PostDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", rec.Code)
	}

	// A signed-in user without the preview flag still gets a 404.
	sess := testSession(post.AuthorID, models.RoleAuthor)
	req = httptest.NewRequest(http.MethodGet, "/post/"+loc.Slug+"/"+post.Slug, nil)
	req = withChiParams(req, sess, "*", loc.Slug+"/"+post.Slug)
	rec = httptest.NewRecorder()
	env.Public.PostDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("signed-in without flag status = %d, want 404", rec.Code)
	}

	// With ?preview=1 they see the draft.
	req = httptest.NewRequest(http.MethodGet, "/post/"+loc.Slug+"/"+post.Slug+"?preview=1", nil)
	req = withChiParams(req, sess, "*", loc.Slug+"/"+post.Slug)
	rec = httptest.NewRecorder()
	env.Public.PostDetail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Предпросмотр") {
		t.Error("preview banner missing")
	}

	// Previews never count as views.
	fresh, _ := env.Posts.FindByID(post.ID)
	if fresh.ViewsCount != 0 {
		t.Errorf("views_count = %d, want 0 after preview", fresh.ViewsCount)
	}
}

func TestRateStoresScore(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-rate-loc")
	post := testPost(t, env, loc, "pub-rate-post")
	makeLive(t, env, post)

	req := formRequest("/post_rate/"+post.ID.String(), url.Values{"score": {"5"}})
	req = withChiParams(req, nil, "postID", post.ID.String())
	rec := httptest.NewRecorder()
	env.Public.Rate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	avg, err := env.Ratings.Average(post.ID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg == nil || *avg != 5.0 {
		t.Errorf("average = %v, want 5.0", avg)
	}
}

func TestRateRejectsInvalidScore(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-badrate-loc")
	post := testPost(t, env, loc, "pub-badrate-post")
	makeLive(t, env, post)

	req := formRequest("/post_rate/"+post.ID.String(), url.Values{"score": {"9"}})
	req = withChiParams(req, nil, "postID", post.ID.String())
	rec := httptest.NewRecorder()
	env.Public.Rate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateHiddenPostNotFound(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-rate-hidden-loc")
	post := testPost(t, env, loc, "pub-rate-hidden-post")

	req := formRequest("/post_rate/"+post.ID.String(), url.Values{"score": {"4"}})
	req = withChiParams(req, nil, "postID", post.ID.String())
	rec := httptest.NewRecorder()
	env.Public.Rate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLocationDetailSubtreePosts(t *testing.T) {
	env := newTestEnv(t)
	parent := testLocation(t, env, "pub-tree-parent")
	child, err := env.Locations.Create(&models.Location{
		Name: "Tree Child", Slug: "pub-tree-child", ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE location_id = $1", child.ID)
		env.DB.Exec("DELETE FROM locations WHERE id = $1", child.ID)
	})

	post := testPost(t, env, &models.Location{ID: child.ID}, "pub-tree-post")
	makeLive(t, env, post)

	// The parent page aggregates posts from the whole subtree.
	req := httptest.NewRequest(http.MethodGet, "/location/"+parent.Slug, nil)
	req = withChiParams(req, nil, "*", parent.Slug)
	rec := httptest.NewRecorder()
	env.Public.LocationDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, post.Title) {
		t.Error("subtree post missing from parent location page")
	}
	if !strings.Contains(body, "Tree Child") {
		t.Error("child location chip missing")
	}
}

func TestLocationDetailWrongPath(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "pub-wrongpath-loc")

	req := httptest.NewRequest(http.MethodGet, "/location/nope/"+loc.Slug, nil)
	req = withChiParams(req, nil, "*", "nope/"+loc.Slug)
	rec := httptest.NewRecorder()
	env.Public.LocationDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
