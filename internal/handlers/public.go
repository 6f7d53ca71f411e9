// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/xml"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"roadbook/internal/cache"
	"roadbook/internal/markdown"
	"roadbook/internal/middleware"
	"roadbook/internal/models"
	"roadbook/internal/render"
	"roadbook/internal/storage"
	"roadbook/internal/store"
)

// pageSize is the number of posts per listing page.
const pageSize = 10

// popularLimit is how many posts the popular page shows.
const popularLimit = 10

// Public groups all public-facing HTTP handlers.
type Public struct {
	renderer  *render.Renderer
	locations *store.LocationStore
	posts     *store.PostStore
	tags      *store.TagStore
	ratings   *store.RatingStore
	views     *store.ViewStore
	abouts    *store.AboutStore
	gallery   *store.GalleryStore
	storage   *storage.Client
	pageCache *cache.PageCache
	siteURL   string
}

// NewPublic creates a new Public handler group. storageClient may be nil
// when object storage is not configured; image URLs are then omitted.
func NewPublic(
	renderer *render.Renderer,
	locations *store.LocationStore,
	posts *store.PostStore,
	tags *store.TagStore,
	ratings *store.RatingStore,
	views *store.ViewStore,
	abouts *store.AboutStore,
	gallery *store.GalleryStore,
	storageClient *storage.Client,
	pageCache *cache.PageCache,
	siteURL string,
) *Public {
	return &Public{
		renderer:  renderer,
		locations: locations,
		posts:     posts,
		tags:      tags,
		ratings:   ratings,
		views:     views,
		abouts:    abouts,
		gallery:   gallery,
		storage:   storageClient,
		pageCache: pageCache,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// postCard is one entry in a post listing.
type postCard struct {
	Post *models.Post
	URL  string
}

// pagination carries the prev/next links for a listing page.
type pagination struct {
	PrevURL string
	NextURL string
}

// galleryImage is one resolved gallery entry for templates.
type galleryImage struct {
	URL     string
	Caption string
}

// Home renders the front page: the newest visible posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.listPage(w, r, "/", "Роудбук", "", nil)
}

// Archive renders the full chronological post archive at /posts.
func (p *Public) Archive(w http.ResponseWriter, r *http.Request) {
	p.listPage(w, r, "/posts", "Все посты", "", nil)
}

// listPage renders a paginated listing of all visible posts under basePath.
func (p *Public) listPage(w http.ResponseWriter, r *http.Request, basePath, heading string, description template.HTML, breadcrumbs []models.Crumb) {
	page := pageParam(r)
	now := time.Now()

	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	posts, err := p.posts.ListVisible(now, pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list visible posts failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	posts, hasNext := clipPage(posts)

	data := map[string]any{
		"Heading":     heading,
		"Description": description,
		"Breadcrumbs": breadcrumbs,
		"Posts":       p.cards(posts),
		"Pagination":  paginate(basePath, page, hasNext),
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: heading, Section: sectionFor(basePath), Data: data})
}

// LocationIndex renders the top of the geography tree at /location.
func (p *Public) LocationIndex(w http.ResponseWriter, r *http.Request) {
	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	roots, err := p.locations.Roots()
	if err != nil {
		slog.Error("list root locations failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	children := make([]models.Crumb, 0, len(roots))
	for _, loc := range roots {
		children = append(children, models.Crumb{Label: loc.Name, URL: "/location/" + loc.Slug})
	}

	data := map[string]any{
		"Heading":  "География",
		"Children": children,
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: "География", Section: "location", Data: data})
}

// LocationDetail renders one location: its description, child locations,
// and the visible posts anywhere in its subtree. The URL carries the full
// ancestry path, e.g. /location/russia/altai/belokurikha.
func (p *Public) LocationDetail(w http.ResponseWriter, r *http.Request) {
	locPath := chi.URLParam(r, "*")

	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	loc, err := p.locations.Resolve(locPath)
	if err == store.ErrNotFound {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("resolve location failed", "error", err, "path", locPath)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	crumbs, err := p.locations.Breadcrumbs(loc.ID)
	if err != nil {
		slog.Error("location breadcrumbs failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	childLocs, err := p.locations.Children(loc.ID)
	if err != nil {
		slog.Error("location children failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	children := make([]models.Crumb, 0, len(childLocs))
	prefix := strings.Trim(locPath, "/")
	for _, child := range childLocs {
		children = append(children, models.Crumb{
			Label: child.Name,
			URL:   "/location/" + prefix + "/" + child.Slug,
		})
	}

	subtree, err := p.locations.DescendantsAndSelf(loc.ID)
	if err != nil {
		slog.Error("location subtree failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	ids := make([]uuid.UUID, len(subtree))
	for i, node := range subtree {
		ids[i] = node.ID
	}

	page := pageParam(r)
	posts, err := p.posts.ListVisibleInLocations(ids, time.Now(), pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list posts in location failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	posts, hasNext := clipPage(posts)

	var description template.HTML
	if loc.Description != "" {
		if htmlBody, err := markdown.ToHTML(loc.Description); err == nil {
			description = template.HTML(htmlBody)
		}
	}

	data := map[string]any{
		"Heading":     loc.Name,
		"Description": description,
		"Breadcrumbs": crumbs,
		"Children":    children,
		"Posts":       p.cards(posts),
		"Pagination":  paginate("/location/"+prefix, page, hasNext),
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: loc.Name, Section: "location", Data: data})
}

// PostDetail renders a single post. The URL is the location path followed
// by the post slug, e.g. /post/russia/altai/belokurikha/winter-trip. The
// page is never served from the full-page cache: each hit feeds the view
// ledger and the rating block shows live numbers.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	full := strings.Trim(chi.URLParam(r, "*"), "/")
	idx := strings.LastIndex(full, "/")
	if idx < 0 {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}
	locPath, postSlug := full[:idx], full[idx+1:]

	loc, err := p.locations.Resolve(locPath)
	if err == store.ErrNotFound {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("resolve location failed", "error", err, "path", locPath)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	post, err := p.posts.FindBySlugAndLocation(postSlug, loc.ID)
	if err != nil {
		slog.Error("find post failed", "error", err, "slug", postSlug)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	if post == nil {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}

	now := time.Now()
	sess := middleware.SessionFromCtx(r.Context())
	preview := false
	if !post.IsVisibleToPublic(now) {
		// Signed-in users may preview a hidden post with ?preview=1;
		// everyone else gets a 404 indistinguishable from a missing post.
		if sess == nil || !sess.TwoFADone || r.URL.Query().Get("preview") != "1" {
			p.errorPage(w, r, http.StatusNotFound)
			return
		}
		preview = true
	}

	if !preview {
		if _, err := p.views.Record(post.ID, middleware.ClientIP(r), now); err != nil {
			slog.Error("record view failed", "error", err, "post_id", post.ID)
		} else {
			// Re-read so the counter shown includes this visit.
			if fresh, err := p.posts.FindByID(post.ID); err == nil && fresh != nil {
				post = fresh
			}
		}
	}

	body, err := markdown.ToHTML(post.BodyMarkdown)
	if err != nil {
		slog.Error("render post body failed", "error", err, "post_id", post.ID)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	crumbs, err := p.locations.Breadcrumbs(loc.ID)
	if err != nil {
		slog.Error("post breadcrumbs failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	crumbs = append(crumbs, models.Crumb{Label: post.Title, URL: r.URL.Path})

	tags, err := p.posts.TagsFor(post.ID)
	if err != nil {
		slog.Error("post tags failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	avg, err := p.ratings.Average(post.ID)
	if err != nil {
		slog.Error("post rating average failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	count, err := p.ratings.Count(post.ID)
	if err != nil {
		slog.Error("post rating count failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Post":          post,
		"Body":          template.HTML(body),
		"Breadcrumbs":   crumbs,
		"Tags":          tags,
		"Preview":       preview,
		"RatingAverage": avg,
		"RatingCount":   count,
		"Scores":        ratingScores(),
		"CoverURL":      p.imageURL(post.CoverImageKey),
		"Gallery":       p.postGallery(post.ID),
	}
	p.renderer.Page(w, r, "site/post", &render.PageData{
		Title:   post.SEOTitle(),
		Section: "posts",
		Data:    data,
	})
}

// TagIndex renders the tag cloud at /tags. Only tags with at least one
// visible post are listed.
func (p *Public) TagIndex(w http.ResponseWriter, r *http.Request) {
	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	tags, err := p.tags.ListVisible(time.Now())
	if err != nil {
		slog.Error("list visible tags failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	p.renderCached(w, r, "site/tags", &render.PageData{
		Title:   "Теги",
		Section: "tags",
		Data:    map[string]any{"Tags": tags},
	})
}

// TagDetail renders all visible posts carrying one tag.
func (p *Public) TagDetail(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	tag, err := p.tags.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find tag failed", "error", err, "slug", slugParam)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	if tag == nil {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}

	page := pageParam(r)
	posts, err := p.posts.ListVisibleByTag(tag.ID, time.Now(), pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list posts by tag failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	posts, hasNext := clipPage(posts)

	data := map[string]any{
		"Heading":    "Тег: " + tag.Name,
		"Posts":      p.cards(posts),
		"Pagination": paginate("/tag/"+tag.Slug, page, hasNext),
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: tag.Name, Section: "tags", Data: data})
}

// Best renders visible posts ordered by average rating.
func (p *Public) Best(w http.ResponseWriter, r *http.Request) {
	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	page := pageParam(r)
	posts, err := p.posts.ListBest(time.Now(), pageSize+1, (page-1)*pageSize)
	if err != nil {
		slog.Error("list best posts failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	posts, hasNext := clipPage(posts)

	data := map[string]any{
		"Heading":    "Лучшие посты",
		"Posts":      p.cards(posts),
		"Pagination": paginate("/best", page, hasNext),
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: "Лучшие посты", Section: "best", Data: data})
}

// Popular renders the most-viewed visible posts.
func (p *Public) Popular(w http.ResponseWriter, r *http.Request) {
	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	posts, err := p.posts.ListPopular(time.Now(), popularLimit)
	if err != nil {
		slog.Error("list popular posts failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Heading": "Популярные посты",
		"Posts":   p.cards(posts),
	}
	p.renderCached(w, r, "site/post_list", &render.PageData{Title: "Популярные посты", Section: "popular", Data: data})
}

// About renders the active about page, or 404 when none is active.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	if html, ok := p.cachedPage(r); ok {
		writeHTML(w, html)
		return
	}

	page, err := p.abouts.Active()
	if err != nil {
		slog.Error("load active about page failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	if page == nil {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}

	body, err := markdown.ToHTML(page.BodyMarkdown)
	if err != nil {
		slog.Error("render about body failed", "error", err, "page_id", page.ID)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Page":     page,
		"Body":     template.HTML(body),
		"CoverURL": p.imageURL(page.CoverImageKey),
		"Gallery":  p.aboutGallery(page.ID),
	}
	p.renderCached(w, r, "site/about", &render.PageData{Title: page.SEOTitle(), Section: "about", Data: data})
}

// Rate records or overwrites the caller's rating for a post, keyed by IP.
func (p *Public) Rate(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}

	post, err := p.posts.FindByID(postID)
	if err != nil {
		slog.Error("find post for rating failed", "error", err)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	if post == nil || !post.IsVisibleToPublic(time.Now()) {
		p.errorPage(w, r, http.StatusNotFound)
		return
	}

	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil || !models.ValidScore(score) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := p.ratings.Upsert(postID, middleware.ClientIP(r), score); err != nil {
		slog.Error("upsert rating failed", "error", err, "post_id", postID)
		p.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	// AJAX submissions get the refreshed rating block; plain form posts
	// go back to the article.
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		avg, _ := p.ratings.Average(postID)
		count, _ := p.ratings.Count(postID)
		fragment, err := p.renderer.Fragment(r, "site/post", "rating_block", &render.PageData{
			Data: map[string]any{
				"Post":          post,
				"RatingAverage": avg,
				"RatingCount":   count,
				"Scores":        ratingScores(),
			},
		})
		if err != nil {
			slog.Error("render rating fragment failed", "error", err, "post_id", postID)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeHTML(w, fragment)
		return
	}

	target := r.Referer()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target+"#rating", http.StatusSeeOther)
}

// RobotsTxt serves a robots policy pointing crawlers at the sitemap.
func (p *Public) RobotsTxt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", p.siteURL)
}

// sitemapURL is one <url> entry in the sitemap.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapSet is the sitemap root element.
type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML serves an XML sitemap of the static pages, location pages,
// and all visible posts.
func (p *Public) SitemapXML(w http.ResponseWriter, r *http.Request) {
	set := sitemapSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range []string{"/", "/posts", "/location", "/tags", "/best", "/popular", "/about"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: p.siteURL + path})
	}

	locs, err := p.locations.List()
	if err != nil {
		slog.Error("sitemap locations failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	paths, err := p.locations.PathSlugs()
	if err != nil {
		slog.Error("sitemap location paths failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, loc := range locs {
		if path, ok := paths[loc.ID]; ok {
			set.URLs = append(set.URLs, sitemapURL{Loc: p.siteURL + "/location/" + path})
		}
	}

	now := time.Now()
	total, err := p.posts.CountVisible(now)
	if err != nil {
		slog.Error("sitemap post count failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	posts, err := p.posts.ListVisible(now, total, 0)
	if err != nil {
		slog.Error("sitemap posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for i := range posts {
		locPath, ok := paths[posts[i].LocationID]
		if !ok {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     p.siteURL + "/post/" + locPath + "/" + posts[i].Slug,
			LastMod: posts[i].UpdatedAt.Format("2006-01-02"),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		slog.Error("encode sitemap failed", "error", err)
	}
}

// Health reports liveness for load balancers.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// errorPage renders the site error template with the right status code.
func (p *Public) errorPage(w http.ResponseWriter, r *http.Request, code int) {
	messages := map[int]string{
		http.StatusNotFound:            "Страница не найдена.",
		http.StatusInternalServerError: "Что-то пошло не так.",
	}
	html, err := p.renderer.Render(r, "site/error", &render.PageData{
		Title: http.StatusText(code),
		Data:  map[string]any{"Code": code, "Message": messages[code]},
	})
	if err != nil {
		http.Error(w, http.StatusText(code), code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(html)
}

// cachedPage returns the full-page cache entry for this request, if the
// request is anonymous and an entry exists. Logged-in users always get a
// fresh render so previews and session-dependent chrome stay correct.
func (p *Public) cachedPage(r *http.Request) ([]byte, bool) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		return nil, false
	}
	key := cache.PathKey(r.URL.Path)
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return p.pageCache.Get(r.Context(), key)
}

// renderCached renders a page, stores it in the full-page cache for
// anonymous requests, and writes it out.
func (p *Public) renderCached(w http.ResponseWriter, r *http.Request, name string, data *render.PageData) {
	html, err := p.renderer.Render(r, name, data)
	if err != nil {
		slog.Error("render page failed", "error", err, "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if middleware.SessionFromCtx(r.Context()) == nil {
		key := cache.PathKey(r.URL.Path)
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		p.pageCache.Set(r.Context(), key, html)
	}
	writeHTML(w, html)
}

// cards builds listing entries with detail URLs and rating averages. Paths
// and averages come from one batched query each, not one pair per post.
func (p *Public) cards(posts []models.Post) []postCard {
	if len(posts) == 0 {
		return nil
	}

	paths, err := p.locations.PathSlugs()
	if err != nil {
		slog.Error("location paths failed", "error", err)
	}
	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	averages, err := p.ratings.AverageFor(ids)
	if err != nil {
		slog.Error("listing averages failed", "error", err)
	}

	cards := make([]postCard, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		locPath, ok := paths[post.LocationID]
		if !ok {
			continue
		}
		if avg, ok := averages[post.ID]; ok {
			a := avg
			post.AverageRating = &a
		}
		cards = append(cards, postCard{
			Post: post,
			URL:  "/post/" + locPath + "/" + post.Slug,
		})
	}
	return cards
}

// postGallery resolves a post's gallery images to public URLs.
func (p *Public) postGallery(postID uuid.UUID) []galleryImage {
	if p.storage == nil {
		return nil
	}
	images, err := p.gallery.PostImages(postID)
	if err != nil {
		slog.Error("post gallery failed", "error", err, "post_id", postID)
		return nil
	}
	out := make([]galleryImage, 0, len(images))
	for _, img := range images {
		out = append(out, galleryImage{URL: p.storage.FileURL(img.ImageKey), Caption: img.Caption})
	}
	return out
}

// aboutGallery resolves an about page's gallery images to public URLs.
func (p *Public) aboutGallery(pageID uuid.UUID) []galleryImage {
	if p.storage == nil {
		return nil
	}
	images, err := p.gallery.AboutImages(pageID)
	if err != nil {
		slog.Error("about gallery failed", "error", err, "page_id", pageID)
		return nil
	}
	out := make([]galleryImage, 0, len(images))
	for _, img := range images {
		out = append(out, galleryImage{URL: p.storage.FileURL(img.ImageKey), Caption: img.Caption})
	}
	return out
}

// imageURL resolves an optional object key to a public URL.
func (p *Public) imageURL(key *string) string {
	if key == nil || p.storage == nil {
		return ""
	}
	return p.storage.FileURL(*key)
}

// pageParam extracts the 1-based page number from the query string.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// clipPage trims a limit+1 result set to the page size and reports whether
// a further page exists.
func clipPage(posts []models.Post) ([]models.Post, bool) {
	if len(posts) > pageSize {
		return posts[:pageSize], true
	}
	return posts, false
}

// paginate builds prev/next links, or nil when the listing fits one page.
func paginate(basePath string, page int, hasNext bool) *pagination {
	if page == 1 && !hasNext {
		return nil
	}
	pg := &pagination{}
	if page > 1 {
		if page == 2 {
			pg.PrevURL = basePath
		} else {
			pg.PrevURL = fmt.Sprintf("%s?page=%d", basePath, page-1)
		}
	}
	if hasNext {
		pg.NextURL = fmt.Sprintf("%s?page=%d", basePath, page+1)
	}
	return pg
}

// ratingScores returns the selectable scores for the rating form.
func ratingScores() []int {
	scores := make([]int, 0, models.MaxScore)
	for s := models.MinScore; s <= models.MaxScore; s++ {
		scores = append(scores, s)
	}
	return scores
}

// sectionFor maps a listing base path to the nav section name.
func sectionFor(basePath string) string {
	switch basePath {
	case "/":
		return "home"
	case "/posts":
		return "posts"
	}
	return strings.TrimPrefix(basePath, "/")
}

// writeHTML writes a rendered page with the HTML content type.
func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
