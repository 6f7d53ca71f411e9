// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"roadbook/internal/cache"
	"roadbook/internal/middleware"
	"roadbook/internal/models"
	"roadbook/internal/publish"
	"roadbook/internal/render"
	"roadbook/internal/storage"
	"roadbook/internal/store"
)

// maxUploadBytes caps image uploads at 20 MB.
const maxUploadBytes = 20 << 20

// Admin groups all admin-panel HTTP handlers. Route-level middleware
// guarantees an authenticated, 2FA-complete session; role checks beyond
// that happen here and in the publish policy.
type Admin struct {
	renderer  *render.Renderer
	locations *store.LocationStore
	posts     *store.PostStore
	tags      *store.TagStore
	abouts    *store.AboutStore
	users     *store.UserStore
	gallery   *store.GalleryStore
	ratings   *store.RatingStore
	storage   *storage.Client
	pageCache *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(
	renderer *render.Renderer,
	locations *store.LocationStore,
	posts *store.PostStore,
	tags *store.TagStore,
	abouts *store.AboutStore,
	users *store.UserStore,
	gallery *store.GalleryStore,
	ratings *store.RatingStore,
	storageClient *storage.Client,
	pageCache *cache.PageCache,
) *Admin {
	return &Admin{
		renderer:  renderer,
		locations: locations,
		posts:     posts,
		tags:      tags,
		abouts:    abouts,
		users:     users,
		gallery:   gallery,
		ratings:   ratings,
		storage:   storageClient,
		pageCache: pageCache,
	}
}

// postRow is one line of the admin post index.
type postRow struct {
	Post         *models.Post
	LocationName string
	State        publish.State
	Action       string
	ActionLabel  string
}

// tagOption is one checkbox in the post form's tag picker.
type tagOption struct {
	ID      uuid.UUID
	Name    string
	Checked bool
}

// Dashboard shows entity counts and the auto-publish queue length.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListAll()
	if err != nil {
		slog.Error("dashboard posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	queued := 0
	for i := range posts {
		if posts[i].IsModerated && !posts[i].IsPublished {
			queued++
		}
	}

	locations, err := a.locations.List()
	if err != nil {
		slog.Error("dashboard locations failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	tags, err := a.tags.List()
	if err != nil {
		slog.Error("dashboard tags failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin/dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"PostCount":     len(posts),
			"QueueCount":    queued,
			"LocationCount": len(locations),
			"TagCount":      len(tags),
		},
	})
}

// PostsPage lists posts with their workflow state and the next transition
// the current role may apply. Authors see only their own posts.
func (a *Admin) PostsPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	role := models.Role(sess.Role)

	posts, err := a.posts.ListAll()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	locations, err := a.locations.List()
	if err != nil {
		slog.Error("list locations failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	locNames := make(map[uuid.UUID]string, len(locations))
	for _, loc := range locations {
		locNames[loc.ID] = loc.Name
	}

	now := time.Now()
	rows := make([]postRow, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		if role == models.RoleAuthor && post.AuthorID != sess.UserID {
			continue
		}
		row := postRow{
			Post:         post,
			LocationName: locNames[post.LocationID],
			State:        publish.StateOf(post, now),
		}
		row.Action, row.ActionLabel = nextAction(role, post, now)
		rows = append(rows, row)
	}

	a.renderer.Page(w, r, "admin/posts", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data:    map[string]any{"Posts": rows},
	})
}

// nextAction picks the single most useful workflow button for a post row.
func nextAction(role models.Role, p *models.Post, now time.Time) (string, string) {
	switch publish.StateOf(p, now) {
	case publish.StateDraft:
		if role == models.RoleAdmin {
			return "moderate", "Moderate"
		}
	case publish.StateModerated:
		if role == models.RoleAdmin || role == models.RoleEditor {
			return "publish", "Publish"
		}
	case publish.StateScheduled, publish.StateLive:
		if role == models.RoleAdmin || role == models.RoleEditor {
			return "unpublish", "Unpublish"
		}
	}
	return "", ""
}

// PostNewPage renders the empty post form.
func (a *Admin) PostNewPage(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, nil, "")
}

// PostCreate handles the new-post form submission.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	locationID, err := uuid.Parse(r.FormValue("location_id"))
	if err != nil {
		a.renderPostForm(w, r, nil, "Choose a location.")
		return
	}

	post := &models.Post{
		Title:           r.FormValue("title"),
		Slug:            r.FormValue("slug"),
		AuthorID:        sess.UserID,
		LocationID:      locationID,
		BodyMarkdown:    r.FormValue("body_markdown"),
		MetaTitle:       r.FormValue("meta_title"),
		MetaDescription: r.FormValue("meta_description"),
	}
	if post.Title == "" {
		a.renderPostForm(w, r, post, "Title is required.")
		return
	}

	created, err := a.posts.Create(post)
	if err == store.ErrDuplicateSlug {
		a.renderPostForm(w, r, post, "That slug is already taken.")
		return
	}
	if err != nil {
		slog.Error("create post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.posts.SetTags(created.ID, formUUIDs(r, "tag_ids")); err != nil {
		slog.Error("set post tags failed", "error", err, "post_id", created.ID)
	}

	http.Redirect(w, r, "/admin/posts/"+created.ID.String(), http.StatusSeeOther)
}

// PostEditPage renders the post form for an existing post.
func (a *Admin) PostEditPage(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}
	a.renderPostForm(w, r, post, "")
}

// PostUpdate handles the edit form submission. Workflow flags are not
// touched here; they move only through the transition endpoints.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}

	locationID, err := uuid.Parse(r.FormValue("location_id"))
	if err != nil {
		a.renderPostForm(w, r, post, "Choose a location.")
		return
	}

	post.Title = r.FormValue("title")
	post.Slug = r.FormValue("slug")
	post.LocationID = locationID
	post.BodyMarkdown = r.FormValue("body_markdown")
	post.MetaTitle = r.FormValue("meta_title")
	post.MetaDescription = r.FormValue("meta_description")

	if err := a.posts.Update(post); err != nil {
		if err == store.ErrDuplicateSlug {
			a.renderPostForm(w, r, post, "That slug is already taken.")
			return
		}
		slog.Error("update post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.posts.SetTags(post.ID, formUUIDs(r, "tag_ids")); err != nil {
		slog.Error("set post tags failed", "error", err, "post_id", post.ID)
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// renderPostForm renders the post form with location and tag pickers.
func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, post *models.Post, formErr string) {
	sess := middleware.SessionFromCtx(r.Context())
	role := models.Role(sess.Role)

	locations, err := a.locations.FlatTree()
	if err != nil {
		slog.Error("location tree failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	allTags, err := a.tags.List()
	if err != nil {
		slog.Error("list tags failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	checked := map[uuid.UUID]bool{}
	if post != nil && post.ID != uuid.Nil {
		postTags, err := a.posts.TagsFor(post.ID)
		if err != nil {
			slog.Error("post tags failed", "error", err, "post_id", post.ID)
		}
		for _, t := range postTags {
			checked[t.ID] = true
		}
	}
	options := make([]tagOption, 0, len(allTags))
	for _, t := range allTags {
		options = append(options, tagOption{ID: t.ID, Name: t.Name, Checked: checked[t.ID]})
	}

	data := map[string]any{
		"Post":           post,
		"Locations":      locations,
		"Tags":           options,
		"Error":          formErr,
		"StorageEnabled": a.storage != nil,
	}
	if post != nil && post.ID != uuid.Nil {
		now := time.Now()
		data["CanModerate"] = publish.CanSetField(role, publish.FieldModerated, post)
		data["CanPublish"] = publish.CanSetField(role, publish.FieldPublished, post)
		data["CanDelete"] = publish.CanDelete(post, now)
		data["Gallery"] = a.postGalleryAdmin(post.ID)
		data["CoverURL"] = a.imageURL(post.CoverImageKey)

		data["RatingAverage"] = (*float64)(nil)
		data["RatingCount"] = 0
		if avg, err := a.ratings.Average(post.ID); err == nil {
			data["RatingAverage"] = avg
		}
		if count, err := a.ratings.Count(post.ID); err == nil {
			data["RatingCount"] = count
		}
		if locPath, err := a.locations.PathSlug(post.LocationID); err == nil {
			data["PreviewURL"] = "/post/" + locPath + "/" + post.Slug + "?preview=1"
		}
	}

	title := "New post"
	if post != nil && post.ID != uuid.Nil {
		title = "Edit post"
	}
	a.renderer.Page(w, r, "admin/post_form", &render.PageData{
		Title:   title,
		Section: "posts",
		Data:    data,
	})
}

// PostModerate approves a post. Admin only, enforced by the policy.
func (a *Admin) PostModerate(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, func(role models.Role, p *models.Post, _ time.Time) error {
		return publish.Moderate(role, p)
	})
}

// PostUnmoderate revokes approval.
func (a *Admin) PostUnmoderate(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, func(role models.Role, p *models.Post, _ time.Time) error {
		return publish.Unmoderate(role, p)
	})
}

// PostPublish makes a moderated post public.
func (a *Admin) PostPublish(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, publish.Publish)
}

// PostUnpublish withdraws a post from public view.
func (a *Admin) PostUnpublish(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, func(role models.Role, p *models.Post, _ time.Time) error {
		return publish.Unpublish(role, p)
	})
}

// transition runs one policy-checked workflow transition and persists it.
func (a *Admin) transition(w http.ResponseWriter, r *http.Request, fn func(models.Role, *models.Post, time.Time) error) {
	sess := middleware.SessionFromCtx(r.Context())
	role := models.Role(sess.Role)

	post, ok := a.loadPost(w, r)
	if !ok {
		return
	}

	if err := fn(role, post, time.Now()); err != nil {
		switch err {
		case publish.ErrPermissionDenied:
			http.Error(w, "Forbidden", http.StatusForbidden)
		case publish.ErrNotModerated:
			http.Error(w, "post is not moderated", http.StatusConflict)
		default:
			slog.Error("workflow transition failed", "error", err, "post_id", post.ID)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	if err := a.posts.SetWorkflowState(post); err != nil {
		slog.Error("persist workflow state failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// PostDelete removes a post that has never gone live.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}

	if err := a.posts.Delete(post.ID, time.Now()); err != nil {
		if err == store.ErrPostLive {
			http.Error(w, "live posts cannot be deleted", http.StatusConflict)
			return
		}
		slog.Error("delete post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// PostCoverUpload stores a new cover image for a post. The object key is
// deterministic, so re-uploading replaces the old cover in place.
func (a *Admin) PostCoverUpload(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}
	if a.storage == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := uploadedFile(r, "cover")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	locPath, err := a.locations.PathSlug(post.LocationID)
	if err != nil {
		slog.Error("path slug failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key := storage.CoverKey(locPath, post.Slug, header.Filename)
	if err := a.storage.Upload(r.Context(), key, header.Header.Get("Content-Type"), file, header.Size); err != nil {
		slog.Error("cover upload failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	post.CoverImageKey = &key
	if err := a.posts.Update(post); err != nil {
		slog.Error("save cover key failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// PostGalleryAdd appends one image to a post's gallery.
func (a *Admin) PostGalleryAdd(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}
	if a.storage == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := uploadedFile(r, "image")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	existing, err := a.gallery.PostImages(post.ID)
	if err != nil {
		slog.Error("post gallery failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	locPath, err := a.locations.PathSlug(post.LocationID)
	if err != nil {
		slog.Error("path slug failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key := storage.GalleryKey(locPath, post.Slug, len(existing)+1, header.Filename)
	if err := a.storage.Upload(r.Context(), key, header.Header.Get("Content-Type"), file, header.Size); err != nil {
		slog.Error("gallery upload failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	_, err = a.gallery.AddPostImage(&models.PostImage{
		PostID:   post.ID,
		ImageKey: key,
		Caption:  r.FormValue("caption"),
	})
	if err != nil {
		slog.Error("save gallery image failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// PostGalleryDelete removes one gallery image, object included.
func (a *Admin) PostGalleryDelete(w http.ResponseWriter, r *http.Request) {
	post, ok := a.ownedPost(w, r)
	if !ok {
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	img, err := a.gallery.FindPostImage(imageID)
	if err != nil {
		slog.Error("find gallery image failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if img == nil || img.PostID != post.ID {
		http.NotFound(w, r)
		return
	}

	if a.storage != nil {
		if err := a.storage.Delete(r.Context(), img.ImageKey); err != nil {
			slog.Error("delete gallery object failed", "error", err, "key", img.ImageKey)
		}
	}
	if err := a.gallery.DeletePostImage(imageID); err != nil {
		slog.Error("delete gallery image failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// LocationsPage lists the location tree with a create form.
func (a *Admin) LocationsPage(w http.ResponseWriter, r *http.Request) {
	a.renderLocations(w, r, "")
}

func (a *Admin) renderLocations(w http.ResponseWriter, r *http.Request, formErr string) {
	locations, err := a.locations.FlatTree()
	if err != nil {
		slog.Error("location tree failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.Page(w, r, "admin/locations", &render.PageData{
		Title:   "Locations",
		Section: "locations",
		Data:    map[string]any{"Locations": locations, "Error": formErr},
	})
}

// LocationCreate adds a node to the geography tree.
func (a *Admin) LocationCreate(w http.ResponseWriter, r *http.Request) {
	loc := &models.Location{
		Name:        r.FormValue("name"),
		Slug:        r.FormValue("slug"),
		Description: r.FormValue("description"),
	}
	if parent := r.FormValue("parent_id"); parent != "" {
		parentID, err := uuid.Parse(parent)
		if err != nil {
			a.renderLocations(w, r, "Invalid parent.")
			return
		}
		loc.ParentID = &parentID
	}
	if loc.Name == "" {
		a.renderLocations(w, r, "Name is required.")
		return
	}

	if _, err := a.locations.Create(loc); err != nil {
		if err == store.ErrDuplicateSlug {
			a.renderLocations(w, r, "That slug is already used elsewhere in the tree.")
			return
		}
		slog.Error("create location failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/locations", http.StatusSeeOther)
}

// LocationDelete removes a location unless posts live in its subtree.
func (a *Admin) LocationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "locationID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.locations.Delete(id); err != nil {
		if err == store.ErrLocationInUse {
			a.renderLocations(w, r, "This location still has posts and cannot be deleted.")
			return
		}
		slog.Error("delete location failed", "error", err, "location_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/locations", http.StatusSeeOther)
}

// TagsPage lists tags with a create form.
func (a *Admin) TagsPage(w http.ResponseWriter, r *http.Request) {
	a.renderTags(w, r, "")
}

func (a *Admin) renderTags(w http.ResponseWriter, r *http.Request, formErr string) {
	tags, err := a.tags.List()
	if err != nil {
		slog.Error("list tags failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.Page(w, r, "admin/tags", &render.PageData{
		Title:   "Tags",
		Section: "tags",
		Data:    map[string]any{"Tags": tags, "Error": formErr},
	})
}

// TagCreate adds a tag.
func (a *Admin) TagCreate(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		a.renderTags(w, r, "Name is required.")
		return
	}

	if _, err := a.tags.Create(&models.Tag{Name: name}); err != nil {
		if err == store.ErrDuplicateSlug {
			a.renderTags(w, r, "A tag with that name already exists.")
			return
		}
		slog.Error("create tag failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// TagDelete removes a tag; post associations are cleared in the same
// statement batch by the store.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.tags.Delete(id); err != nil {
		slog.Error("delete tag failed", "error", err, "tag_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// AboutsPage lists about page versions.
func (a *Admin) AboutsPage(w http.ResponseWriter, r *http.Request) {
	a.renderAbouts(w, r, "")
}

func (a *Admin) renderAbouts(w http.ResponseWriter, r *http.Request, formErr string) {
	pages, err := a.abouts.List()
	if err != nil {
		slog.Error("list about pages failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.Page(w, r, "admin/abouts", &render.PageData{
		Title:   "About pages",
		Section: "about",
		Data:    map[string]any{"Pages": pages, "Error": formErr},
	})
}

// AboutNewPage renders the empty about page form.
func (a *Admin) AboutNewPage(w http.ResponseWriter, r *http.Request) {
	a.renderAboutForm(w, r, nil, "")
}

// AboutCreate adds a new, inactive about page version.
func (a *Admin) AboutCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	page := &models.AboutPage{
		Title:           r.FormValue("title"),
		AuthorID:        sess.UserID,
		BodyMarkdown:    r.FormValue("body_markdown"),
		MetaTitle:       r.FormValue("meta_title"),
		MetaDescription: r.FormValue("meta_description"),
	}
	if page.Title == "" {
		a.renderAboutForm(w, r, page, "Title is required.")
		return
	}

	created, err := a.abouts.Create(page)
	if err != nil {
		if err == store.ErrDuplicateSlug {
			a.renderAboutForm(w, r, page, "A page with that title already exists.")
			return
		}
		slog.Error("create about page failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/about/"+created.ID.String(), http.StatusSeeOther)
}

// AboutEditPage renders the form for an existing about page.
func (a *Admin) AboutEditPage(w http.ResponseWriter, r *http.Request) {
	page, ok := a.loadAbout(w, r)
	if !ok {
		return
	}
	a.renderAboutForm(w, r, page, "")
}

// AboutUpdate handles the about page edit form.
func (a *Admin) AboutUpdate(w http.ResponseWriter, r *http.Request) {
	page, ok := a.loadAbout(w, r)
	if !ok {
		return
	}

	page.Title = r.FormValue("title")
	page.BodyMarkdown = r.FormValue("body_markdown")
	page.MetaTitle = r.FormValue("meta_title")
	page.MetaDescription = r.FormValue("meta_description")

	if err := a.abouts.Update(page); err != nil {
		slog.Error("update about page failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page.IsActive {
		a.pageCache.InvalidateAll(r.Context())
	}
	http.Redirect(w, r, "/admin/about/"+page.ID.String(), http.StatusSeeOther)
}

func (a *Admin) renderAboutForm(w http.ResponseWriter, r *http.Request, page *models.AboutPage, formErr string) {
	title := "New about page"
	if page != nil && page.ID != uuid.Nil {
		title = "Edit about page"
	}
	data := map[string]any{
		"Page":           page,
		"Error":          formErr,
		"StorageEnabled": a.storage != nil,
	}
	if page != nil && page.ID != uuid.Nil {
		data["Gallery"] = a.aboutGalleryAdmin(page.ID)
		data["CoverURL"] = a.imageURL(page.CoverImageKey)
	}
	a.renderer.Page(w, r, "admin/about_form", &render.PageData{
		Title:   title,
		Section: "about",
		Data:    data,
	})
}

// AboutActivate makes one about page version the live one. The store swap
// is transactional, so exactly one page is active afterwards.
func (a *Admin) AboutActivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pageID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.abouts.Activate(id); err != nil {
		if err == store.ErrNotFound {
			http.NotFound(w, r)
			return
		}
		slog.Error("activate about page failed", "error", err, "page_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/about", http.StatusSeeOther)
}

// AboutDelete removes an inactive about page version.
func (a *Admin) AboutDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pageID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.abouts.Delete(id); err != nil {
		if err == store.ErrPageActive {
			a.renderAbouts(w, r, "The active page cannot be deleted. Activate another version first.")
			return
		}
		slog.Error("delete about page failed", "error", err, "page_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/about", http.StatusSeeOther)
}

// AboutCoverUpload stores a cover image for an about page.
func (a *Admin) AboutCoverUpload(w http.ResponseWriter, r *http.Request) {
	page, ok := a.loadAbout(w, r)
	if !ok {
		return
	}
	if a.storage == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := uploadedFile(r, "cover")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key := storage.AboutCoverKey(page.ID, header.Filename)
	if err := a.storage.Upload(r.Context(), key, header.Header.Get("Content-Type"), file, header.Size); err != nil {
		slog.Error("about cover upload failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page.CoverImageKey = &key
	if err := a.abouts.Update(page); err != nil {
		slog.Error("save about cover key failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page.IsActive {
		a.pageCache.InvalidateAll(r.Context())
	}
	http.Redirect(w, r, "/admin/about/"+page.ID.String(), http.StatusSeeOther)
}

// AboutGalleryAdd appends one image to an about page's gallery.
func (a *Admin) AboutGalleryAdd(w http.ResponseWriter, r *http.Request) {
	page, ok := a.loadAbout(w, r)
	if !ok {
		return
	}
	if a.storage == nil {
		http.Error(w, "object storage is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := uploadedFile(r, "image")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	existing, err := a.gallery.AboutImages(page.ID)
	if err != nil {
		slog.Error("about gallery failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key := storage.AboutGalleryKey(page.ID, len(existing)+1, header.Filename)
	if err := a.storage.Upload(r.Context(), key, header.Header.Get("Content-Type"), file, header.Size); err != nil {
		slog.Error("about gallery upload failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	_, err = a.gallery.AddAboutImage(&models.AboutPageImage{
		PageID:   page.ID,
		ImageKey: key,
		Caption:  r.FormValue("caption"),
	})
	if err != nil {
		slog.Error("save about gallery image failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page.IsActive {
		a.pageCache.InvalidateAll(r.Context())
	}
	http.Redirect(w, r, "/admin/about/"+page.ID.String(), http.StatusSeeOther)
}

// AboutGalleryDelete removes one about page gallery image.
func (a *Admin) AboutGalleryDelete(w http.ResponseWriter, r *http.Request) {
	page, ok := a.loadAbout(w, r)
	if !ok {
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	images, err := a.gallery.AboutImages(page.ID)
	if err != nil {
		slog.Error("about gallery failed", "error", err, "page_id", page.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	var target *models.AboutPageImage
	for i := range images {
		if images[i].ID == imageID {
			target = &images[i]
			break
		}
	}
	if target == nil {
		http.NotFound(w, r)
		return
	}

	if a.storage != nil {
		if err := a.storage.Delete(r.Context(), target.ImageKey); err != nil {
			slog.Error("delete about gallery object failed", "error", err, "key", target.ImageKey)
		}
	}
	if err := a.gallery.DeleteAboutImage(imageID); err != nil {
		slog.Error("delete about gallery image failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page.IsActive {
		a.pageCache.InvalidateAll(r.Context())
	}
	http.Redirect(w, r, "/admin/about/"+page.ID.String(), http.StatusSeeOther)
}

// UsersPage lists users. Reached only through RequireAdmin.
func (a *Admin) UsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin/users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users, "Roles": []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleAuthor}},
	})
}

// UserResetTwoFA clears a user's TOTP enrollment so they re-enroll on
// their next login. Useful when someone loses their authenticator.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.users.ResetTOTP(id); err != nil {
		slog.Error("reset totp failed", "error", err, "user_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserSetRole changes a user's role. Admins cannot demote themselves,
// which keeps at least one admin able to reach this page.
func (a *Admin) UserSetRole(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if id == sess.UserID {
		http.Error(w, "you cannot change your own role", http.StatusConflict)
		return
	}

	role := models.Role(r.FormValue("role"))
	switch role {
	case models.RoleAdmin, models.RoleEditor, models.RoleAuthor:
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := a.users.SetRole(id, role); err != nil {
		slog.Error("set role failed", "error", err, "user_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// loadPost fetches the post named in the route, writing the error response
// on failure.
func (a *Admin) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "post_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return post, true
}

// ownedPost is loadPost plus the ownership rule: authors may only touch
// their own posts, while editors and admins may touch any.
func (a *Admin) ownedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	post, ok := a.loadPost(w, r)
	if !ok {
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	if models.Role(sess.Role) == models.RoleAuthor && post.AuthorID != sess.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return post, true
}

// loadAbout fetches the about page named in the route.
func (a *Admin) loadAbout(w http.ResponseWriter, r *http.Request) (*models.AboutPage, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pageID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}

	page, err := a.abouts.FindByID(id)
	if err != nil {
		slog.Error("find about page failed", "error", err, "page_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if page == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return page, true
}

// postGalleryAdmin lists a post's gallery entries for the edit form.
func (a *Admin) postGalleryAdmin(postID uuid.UUID) []models.PostImage {
	images, err := a.gallery.PostImages(postID)
	if err != nil {
		slog.Error("post gallery failed", "error", err, "post_id", postID)
		return nil
	}
	return images
}

// aboutGalleryAdmin lists an about page's gallery entries for the edit form.
func (a *Admin) aboutGalleryAdmin(pageID uuid.UUID) []models.AboutPageImage {
	images, err := a.gallery.AboutImages(pageID)
	if err != nil {
		slog.Error("about gallery failed", "error", err, "page_id", pageID)
		return nil
	}
	return images
}

// imageURL resolves an optional object key to a public URL.
func (a *Admin) imageURL(key *string) string {
	if key == nil || a.storage == nil {
		return ""
	}
	return a.storage.FileURL(*key)
}

// uploadedFile pulls one file out of a multipart form, enforcing the
// upload size cap.
func uploadedFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, err
	}
	return r.FormFile(field)
}

// formUUIDs parses every valid UUID submitted under a form field name.
func formUUIDs(r *http.Request, field string) []uuid.UUID {
	r.ParseForm()
	var ids []uuid.UUID
	for _, raw := range r.Form[field] {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
