// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown source text into HTML using goldmark.
// Before conversion it expands the `{{ rutube:<id> }}` shortcode into an
// inline video embed; malformed shortcodes are dropped from the output.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
		highlighting.NewHighlighting( // Syntax highlighting for fenced code blocks
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Auto-generate heading IDs for anchors
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // Raw HTML pass-through, required for the expanded video embeds
	),
)

var (
	// rutubeShortcode matches a well-formed shortcode. Video ids are
	// restricted to letters, digits, hyphen, and underscore.
	rutubeShortcode = regexp.MustCompile(`\{\{\s*rutube:([A-Za-z0-9_-]+)\s*\}\}`)

	// rutubeAny matches anything that looks like a rutube shortcode,
	// including malformed ids. Used to strip leftovers after expansion.
	rutubeAny = regexp.MustCompile(`\{\{\s*rutube:[^}]*\}\}`)
)

// rutubeEmbed is the iframe template for one video id.
const rutubeEmbed = `<div class="video-embed"><iframe src="https://rutube.ru/play/embed/%s" frameborder="0" allow="clipboard-write; autoplay" allowfullscreen></iframe></div>`

// expandVideos replaces valid rutube shortcodes with iframe embeds and
// removes malformed ones entirely, so a bad id never reaches the page.
func expandVideos(source string) string {
	source = rutubeShortcode.ReplaceAllStringFunc(source, func(m string) string {
		id := rutubeShortcode.FindStringSubmatch(m)[1]
		return fmt.Sprintf(rutubeEmbed, id)
	})
	return rutubeAny.ReplaceAllString(source, "")
}

// ToHTML converts Markdown source into HTML, expanding rutube video
// shortcodes first.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(expandVideos(source)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
