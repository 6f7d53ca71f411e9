// Package router sets up all HTTP routes and middleware chains for the
// Roadbook server. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roadbook/internal/handlers"
	"roadbook/internal/middleware"
	"roadbook/internal/session"
	"roadbook/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, admin *handlers.Admin, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// CSRF runs globally: the cookie has to exist by the time any page
	// renders a form, including the rating form on public post pages.
	// Chi requires every Use before the first route registration.
	r.Use(middleware.CSRF)

	// Health check and crawler endpoints.
	r.Get("/health", public.Health)
	r.Get("/robots.txt", public.RobotsTxt)
	r.Get("/sitemap.xml", public.SitemapXML)

	// Embedded static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Brute-force protection on the login form and the anonymous write
	// endpoint. The rating limit is per IP, matching the rating ledger key.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	ratingLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Admin routes: auth layered per group.
	r.Route("/admin", func(r chi.Router) {
		// Auth pages, accessible without a session.
		r.With(loginLimiter.Middleware).Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA: requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Post("/2fa/setup", auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.With(loginLimiter.Middleware).Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated and 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Dashboard)

			// Posts: any signed-in role; ownership and workflow
			// permissions are enforced in the handlers.
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsPage)
				r.Get("/new", admin.PostNewPage)
				r.Post("/", admin.PostCreate)
				r.Get("/{postID}", admin.PostEditPage)
				r.Post("/{postID}", admin.PostUpdate)
				r.Post("/{postID}/delete", admin.PostDelete)
				r.Post("/{postID}/moderate", admin.PostModerate)
				r.Post("/{postID}/unmoderate", admin.PostUnmoderate)
				r.Post("/{postID}/publish", admin.PostPublish)
				r.Post("/{postID}/unpublish", admin.PostUnpublish)
				r.Post("/{postID}/cover", admin.PostCoverUpload)
				r.Post("/{postID}/gallery", admin.PostGalleryAdd)
				r.Post("/{postID}/gallery/{imageID}/delete", admin.PostGalleryDelete)
			})

			// Site structure: editors and admins only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff)

				r.Route("/locations", func(r chi.Router) {
					r.Get("/", admin.LocationsPage)
					r.Post("/", admin.LocationCreate)
					r.Post("/{locationID}/delete", admin.LocationDelete)
				})

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", admin.TagsPage)
					r.Post("/", admin.TagCreate)
					r.Post("/{tagID}/delete", admin.TagDelete)
				})

				r.Route("/about", func(r chi.Router) {
					r.Get("/", admin.AboutsPage)
					r.Get("/new", admin.AboutNewPage)
					r.Post("/", admin.AboutCreate)
					r.Get("/{pageID}", admin.AboutEditPage)
					r.Post("/{pageID}", admin.AboutUpdate)
					r.Post("/{pageID}/activate", admin.AboutActivate)
					r.Post("/{pageID}/delete", admin.AboutDelete)
					r.Post("/{pageID}/cover", admin.AboutCoverUpload)
					r.Post("/{pageID}/gallery", admin.AboutGalleryAdd)
					r.Post("/{pageID}/gallery/{imageID}/delete", admin.AboutGalleryDelete)
				})
			})

			// User management: admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", admin.UsersPage)
				r.Post("/{userID}/role", admin.UserSetRole)
				r.Post("/{userID}/reset-2fa", admin.UserResetTwoFA)
			})
		})
	})

	// Public site.
	r.Get("/", public.Home)
	r.Get("/posts", public.Archive)
	r.Get("/location", public.LocationIndex)
	r.Get("/location/*", public.LocationDetail)
	r.Get("/post/*", public.PostDetail)
	r.Get("/tags", public.TagIndex)
	r.Get("/tag/{slug}", public.TagDetail)
	r.Get("/best", public.Best)
	r.Get("/popular", public.Popular)
	r.Get("/about", public.About)

	// Rating submission is the one anonymous write; on top of the CSRF
	// double submit it gets a per-IP rate limit.
	r.With(ratingLimiter.Middleware).Post("/post_rate/{postID}", public.Rate)

	return r
}
