// Package web provides embedded static assets (CSS) for the site and the
// admin interface. In development, templates load Tailwind from CDN; in
// production the compiled files are embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. In Docker builds this
// includes the compiled TailwindCSS output; in local development it may
// only contain the stub stylesheets.
//
//go:embed all:static
var StaticFS embed.FS
