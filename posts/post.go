// package posts finds rendered blog posts on disk and pulls the metadata the index page needs out of them:
// a title, a date, and a short plain-text summary.
//
// Extraction is deliberately dumb: it takes the first <title>, <small>, and <p> in the raw text, without parsing the document.
package posts

// Post is a single rendered HTML post.
type Post struct {
	// Path is slash-separated and relative to the posts root, e.g. "2024-01-01.html" or "blog/b.html".
	Path string
	// Title is never empty: it falls back to the file's base name.
	Title string
	// Date is the raw contents of the first <small> tag. May be empty.
	Date string
	// RawSummary is the raw contents of the first <p> tag. May be empty.
	RawSummary string
	// Summary is RawSummary after Summarize. May be empty.
	Summary string
}

// General is the name of the implicit section holding posts that live directly under the posts root.
const General = "General"

// Section is a group of posts that share a top-level directory under the posts root.
type Section struct {
	Name string
	// Dir is the top-level directory, or "" for the posts directly under the root.
	// A directory that happens to be called General is its own section, distinct from the implicit one.
	Dir   string
	Posts []Post
}
