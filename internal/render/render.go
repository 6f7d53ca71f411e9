// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for both the public site
// and the admin interface. Templates are embedded; each page template is
// paired with its section's base layout at startup.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"roadbook/internal/middleware"
	"roadbook/internal/session"
)

//go:embed templates/site/*.html templates/admin/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for the <title> tag
	Section   string         // Active nav section (e.g. "posts", "locations")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"admin/login":      true,
	"admin/2fa_setup":  true,
	"admin/2fa_verify": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. When devMode is true, templates use CDN-hosted assets;
// when false, they reference compiled local static files.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// derefF safely dereferences a float pointer (average ratings).
			"derefF": func(f *float64) float64 {
				if f == nil {
					return 0
				}
				return *f
			},
			// isDev returns true when the app runs in development mode.
			// Used by templates to conditionally load CDN vs local assets.
			"isDev": func() bool {
				return devMode
			},
			// locIndent returns a location name with non-breaking space
			// indentation based on depth, for hierarchical <select> dropdowns.
			"locIndent": func(depth int, name string) string {
				if depth == 0 {
					return name
				}
				return strings.Repeat("    ", depth) + name
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			// stars renders a score as filled/empty star glyphs.
			"stars": func(avg float64) string {
				full := int(avg + 0.5)
				if full > 5 {
					full = 5
				}
				return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
			},
		},
	}

	for _, section := range []string{"site", "admin"} {
		entries, err := templateFS.ReadDir("templates/" + section)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" {
				continue
			}

			tmplName := section + "/" + name[:len(name)-len(".html")]

			var tmpl *template.Template
			var parseErr error
			if standaloneTemplates[tmplName] {
				tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
					templateFS, "templates/"+section+"/"+name,
				)
			} else {
				tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
					templateFS,
					"templates/"+section+"/base.html",
					"templates/"+section+"/"+name,
				)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s: %w", tmplName, parseErr)
			}

			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

// Page renders a full page for the given template name ("site/home",
// "admin/posts", …) directly to the response.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	html, err := rn.Render(r, name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Fragment executes one named block defined inside a parsed page, for
// partial responses to AJAX form submissions.
func (rn *Renderer) Fragment(r *http.Request, page, block string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[page]
	if !ok {
		return nil, fmt.Errorf("template %q not found", page)
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		return nil, fmt.Errorf("execute fragment %s/%s: %w", page, block, err)
	}
	return buf.Bytes(), nil
}

// Render executes a template and returns the HTML, so callers can store
// the bytes in the page cache before writing them out.
func (rn *Renderer) Render(r *http.Request, name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	// Inject CSRF token and session from the request.
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name[strings.IndexByte(name, '/')+1:] + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
