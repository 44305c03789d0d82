package index

import (
	"strings"

	"gitlab.com/efronlicht/postindex/posts"
)

// escape replaces the five characters that are special in HTML text and attribute values.
// & goes first so that it never double-escapes the others.
var escape = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
).Replace

// Render builds the whole index page for the posts, which must already be in display order.
// In the Sections layout they're grouped with posts.Group; in the Flat layout they're rendered as-is.
func Render(cfg Config, pp []posts.Post) []byte {
	title := escape(cfg.title())
	html := []byte(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
`)
	html = append(html, `<link rel="stylesheet" href="`+escape(cfg.CSSHref)+`">`+"\n"...)
	html = append(html, "<title>"+title+"</title>\n</head>\n<body>\n"...)
	html = append(html, "<h2>"+title+"</h2>\n"...)
	prefix := cfg.HrefPrefix()
	switch cfg.Layout {
	case Sections:
		for _, s := range posts.Group(pp) {
			html = append(html, "<h3>"+escape(s.Name)+"</h3>\n"...)
			html = appendGrid(html, prefix, "h4", s.Posts)
		}
	default:
		html = appendGrid(html, prefix, "h3", pp)
	}
	return append(html, "</body>\n</html>\n"...)
}

func appendGrid(html []byte, prefix, heading string, pp []posts.Post) []byte {
	html = append(html, `<div class="card-grid">`+"\n"...)
	for _, p := range pp {
		html = appendCard(html, prefix, heading, p)
	}
	return append(html, "</div>\n"...)
}

// appendCard renders one post. The date and summary paragraphs are left out entirely when empty.
func appendCard(html []byte, prefix, heading string, p posts.Post) []byte {
	html = append(html, `<div class="card">`+"\n"...)
	html = append(html, "  <"+heading+`><a href="`+escape(Href(prefix, p.Path))+`">`+escape(p.Title)+"</a></"+heading+">\n"...)
	if p.Date != "" {
		html = append(html, `  <p class="date">`+escape(p.Date)+"</p>\n"...)
	}
	if p.Summary != "" {
		html = append(html, `  <p class="summary">`+escape(p.Summary)+"</p>\n"...)
	}
	return append(html, "</div>\n"...)
}

// Href is the link to the post at p (relative to the posts root) from the index page.
func Href(prefix, p string) string {
	switch {
	case prefix == "" || prefix == "." || prefix == "./":
		return p
	case strings.HasSuffix(prefix, "/"):
		return prefix + p
	default:
		return prefix + "/" + p
	}
}
