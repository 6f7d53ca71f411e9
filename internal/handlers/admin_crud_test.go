// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"roadbook/internal/models"
)

func TestAdminPostWorkflow(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "adm-flow-loc")
	authorID := testAuthorID(t, env)

	// Author creates a draft through the form handler.
	form := url.Values{
		"title":       {"Workflow Post"},
		"slug":        {"adm-flow-post"},
		"location_id": {loc.ID.String()},
	}
	req := formRequest("/admin/posts", form)
	req = withSession(req, testSession(authorID, models.RoleAuthor))
	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303", rec.Code)
	}

	post, err := env.Posts.FindBySlugAndLocation("adm-flow-post", loc.ID)
	if err != nil || post == nil {
		t.Fatalf("post not created: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID) })

	transition := func(h http.HandlerFunc, role models.Role) int {
		req := formRequest("/admin/posts/"+post.ID.String()+"/x", url.Values{})
		req = withChiParams(req, testSession(authorID, role), "postID", post.ID.String())
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	// Authors cannot moderate.
	if code := transition(env.Admin.PostModerate, models.RoleAuthor); code != http.StatusForbidden {
		t.Errorf("author moderate status = %d, want 403", code)
	}

	// Editors cannot moderate either.
	if code := transition(env.Admin.PostModerate, models.RoleEditor); code != http.StatusForbidden {
		t.Errorf("editor moderate status = %d, want 403", code)
	}

	// Publishing before moderation is rejected.
	if code := transition(env.Admin.PostPublish, models.RoleEditor); code != http.StatusConflict {
		t.Errorf("premature publish status = %d, want 409", code)
	}

	// Admin moderates, editor publishes.
	if code := transition(env.Admin.PostModerate, models.RoleAdmin); code != http.StatusSeeOther {
		t.Fatalf("admin moderate status = %d, want 303", code)
	}
	if code := transition(env.Admin.PostPublish, models.RoleEditor); code != http.StatusSeeOther {
		t.Fatalf("editor publish status = %d, want 303", code)
	}

	post, _ = env.Posts.FindByID(post.ID)
	if !post.IsModerated || !post.IsPublished || post.PublishedAt == nil {
		t.Fatalf("post not live after moderate+publish: %+v", post)
	}

	// Live posts cannot be deleted.
	req = formRequest("/admin/posts/"+post.ID.String()+"/delete", url.Values{})
	req = withChiParams(req, testSession(authorID, models.RoleAdmin), "postID", post.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.PostDelete(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete live status = %d, want 409", rec.Code)
	}

	// Unpublish, then delete succeeds.
	if code := transition(env.Admin.PostUnpublish, models.RoleEditor); code != http.StatusSeeOther {
		t.Fatalf("unpublish status = %d, want 303", code)
	}
	req = formRequest("/admin/posts/"+post.ID.String()+"/delete", url.Values{})
	req = withChiParams(req, testSession(authorID, models.RoleAdmin), "postID", post.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.PostDelete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d, want 303", rec.Code)
	}
	if gone, _ := env.Posts.FindByID(post.ID); gone != nil {
		t.Error("post still exists after delete")
	}
}

func TestAdminAuthorOwnership(t *testing.T) {
	env := newTestEnv(t)
	loc := testLocation(t, env, "adm-own-loc")
	post := testPost(t, env, loc, "adm-own-post")

	// A different author may not edit someone else's post.
	stranger := testSession(newUserID(t, env, "adm-own-stranger@example.com"), models.RoleAuthor)
	req := httptest.NewRequest(http.MethodGet, "/admin/posts/"+post.ID.String(), nil)
	req = withChiParams(req, stranger, "postID", post.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.PostEditPage(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger edit status = %d, want 403", rec.Code)
	}

	// An editor may.
	editor := testSession(stranger.UserID, models.RoleEditor)
	req = httptest.NewRequest(http.MethodGet, "/admin/posts/"+post.ID.String(), nil)
	req = withChiParams(req, editor, "postID", post.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.PostEditPage(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("editor edit status = %d, want 200", rec.Code)
	}
}

func TestAdminLocationGuardedDelete(t *testing.T) {
	env := newTestEnv(t)

	// Create through the handler.
	req := formRequest("/admin/locations", url.Values{
		"name": {"Guarded Region"},
		"slug": {"adm-guard-loc"},
	})
	req = withSession(req, testSession(testAuthorID(t, env), models.RoleAdmin))
	rec := httptest.NewRecorder()
	env.Admin.LocationCreate(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303", rec.Code)
	}

	loc, err := env.Locations.FindBySlug("adm-guard-loc")
	if err != nil || loc == nil {
		t.Fatalf("location not created: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE location_id = $1", loc.ID)
		env.DB.Exec("DELETE FROM locations WHERE id = $1", loc.ID)
	})

	post := testPost(t, env, loc, "adm-guard-post")

	// Delete is refused while a post lives there; the page re-renders
	// with an explanation instead of redirecting.
	del := func() *httptest.ResponseRecorder {
		req := formRequest("/admin/locations/"+loc.ID.String()+"/delete", url.Values{})
		req = withChiParams(req, testSession(post.AuthorID, models.RoleAdmin), "locationID", loc.ID.String())
		rec := httptest.NewRecorder()
		env.Admin.LocationDelete(rec, req)
		return rec
	}

	rec = del()
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cannot be deleted") {
		t.Errorf("guarded delete: status = %d, want refusal page", rec.Code)
	}

	env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID)
	if rec = del(); rec.Code != http.StatusSeeOther {
		t.Errorf("empty delete status = %d, want 303", rec.Code)
	}
}

func TestAdminTagDuplicate(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession(testAuthorID(t, env), models.RoleEditor)

	create := func() *httptest.ResponseRecorder {
		req := formRequest("/admin/tags", url.Values{"name": {"Adm Dup Tag"}})
		req = withSession(req, sess)
		rec := httptest.NewRecorder()
		env.Admin.TagCreate(rec, req)
		return rec
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM tags WHERE name = $1", "Adm Dup Tag") })

	if rec := create(); rec.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303", rec.Code)
	}
	if rec := create(); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "already exists") {
		t.Errorf("duplicate create should re-render with an error, got %d", rec.Code)
	}
}

func TestAdminAboutActivation(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession(testAuthorID(t, env), models.RoleAdmin)

	makePage := func(title string) *models.AboutPage {
		req := formRequest("/admin/about", url.Values{"title": {title}})
		req = withSession(req, sess)
		rec := httptest.NewRecorder()
		env.Admin.AboutCreate(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("about create status = %d, want 303", rec.Code)
		}
		// The redirect target carries the new page's ID.
		id := strings.TrimPrefix(rec.Header().Get("Location"), "/admin/about/")
		page, err := env.Abouts.List()
		if err != nil {
			t.Fatalf("list about pages: %v", err)
		}
		for i := range page {
			if page[i].ID.String() == id {
				t.Cleanup(func() {
					env.DB.Exec("UPDATE about_pages SET is_active = FALSE WHERE id = $1", page[i].ID)
					env.DB.Exec("DELETE FROM about_pages WHERE id = $1", page[i].ID)
				})
				return &page[i]
			}
		}
		t.Fatalf("created page %s not found", id)
		return nil
	}

	first := makePage("Adm About First")
	second := makePage("Adm About Second")

	activate := func(id string) *httptest.ResponseRecorder {
		req := formRequest("/admin/about/"+id+"/activate", url.Values{})
		req = withChiParams(req, sess, "pageID", id)
		rec := httptest.NewRecorder()
		env.Admin.AboutActivate(rec, req)
		return rec
	}

	if rec := activate(first.ID.String()); rec.Code != http.StatusSeeOther {
		t.Fatalf("activate status = %d, want 303", rec.Code)
	}

	// Deleting the active page is refused.
	req := formRequest("/admin/about/"+first.ID.String()+"/delete", url.Values{})
	req = withChiParams(req, sess, "pageID", first.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.AboutDelete(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cannot be deleted") {
		t.Errorf("active delete: status = %d, want refusal page", rec.Code)
	}

	// Activating the second page deactivates the first, freeing it up.
	if rec := activate(second.ID.String()); rec.Code != http.StatusSeeOther {
		t.Fatalf("activate second status = %d, want 303", rec.Code)
	}
	req = formRequest("/admin/about/"+first.ID.String()+"/delete", url.Values{})
	req = withChiParams(req, sess, "pageID", first.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.AboutDelete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("inactive delete status = %d, want 303", rec.Code)
	}
}

// newUserID creates a throwaway user and returns its ID.
func newUserID(t *testing.T, env *testEnv, email string) uuid.UUID {
	t.Helper()
	user, err := env.Users.Create(email, "test-password-123", "Throwaway", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.Users.Delete(user.ID) })
	return user.ID
}
