// package index builds the site's index page: one card per post, linking to it, with its date and a short summary.
package index

import (
	"errors"
	"fmt"
	"path/filepath"

	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/posts"
)

// Layout decides how the index page is organized.
type Layout string

const (
	// Flat lists the posts directly under the posts root in a single grid, under "All Posts".
	Flat Layout = "flat"
	// Sections walks the whole posts tree and gives each top-level directory its own heading and grid, under "Blog Posts".
	Sections Layout = "sections"
)

func (l *Layout) UnmarshalText(b []byte) error {
	switch Layout(b) {
	case Flat, Sections:
		*l = Layout(b)
		return nil
	default:
		return fmt.Errorf("unknown layout %q: expected %q or %q", b, Flat, Sections)
	}
}

// Heading is the default page title and top-level heading for the layout.
func (l Layout) Heading() string {
	if l == Sections {
		return "Blog Posts"
	}
	return "All Posts"
}

// Config of a single index build. Relative paths are relative to the working directory.
type Config struct {
	PostsDir  string // root of the rendered posts.
	PostsHref string // prefix of every card's link. Empty means PostsDir.
	OutFile   string // the index page. Overwritten on every build.
	CSSHref   string // stylesheet linked from the index page.
	PageTitle string // <title> and top-level heading. Empty means Layout.Heading().
	MaxWords  int    // summaries are truncated to this many words.
	Layout    Layout
}

// DefaultConfig matches the site's conventions: posts in _posts, index in site-links.html.
func DefaultConfig() Config {
	return Config{
		PostsDir: "_posts",
		OutFile:  "site-links.html",
		CSSHref:  "assets/css/style.css",
		MaxWords: posts.DefaultMaxWords,
		Layout:   Flat,
	}
}

// ConfigFromEnv is DefaultConfig, overridden by the environment variables
// POSTS_DIR, POSTS_HREF, OUT_FILE, CSS_HREF, PAGE_TITLE, MAX_WORDS, and LAYOUT.
func ConfigFromEnv() Config {
	d := DefaultConfig()
	return Config{
		PostsDir:  enve.StringOr("POSTS_DIR", d.PostsDir),
		PostsHref: enve.StringOr("POSTS_HREF", d.PostsHref),
		OutFile:   enve.StringOr("OUT_FILE", d.OutFile),
		CSSHref:   enve.StringOr("CSS_HREF", d.CSSHref),
		PageTitle: enve.StringOr("PAGE_TITLE", d.PageTitle),
		MaxWords:  enve.IntOr("MAX_WORDS", d.MaxWords),
		Layout:    enve.FromTextOr("LAYOUT", d.Layout),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.PostsDir == "" {
		errs = append(errs, errors.New("missing posts dir"))
	}
	if c.OutFile == "" {
		errs = append(errs, errors.New("missing output file"))
	}
	if c.MaxWords <= 0 {
		errs = append(errs, fmt.Errorf("max words must be positive: got %d", c.MaxWords))
	}
	if c.Layout != Flat && c.Layout != Sections {
		errs = append(errs, fmt.Errorf("unknown layout %q", c.Layout))
	}
	return errors.Join(errs...)
}

func (c Config) title() string {
	if c.PageTitle != "" {
		return c.PageTitle
	}
	return c.Layout.Heading()
}

// HrefPrefix is what card links start with: PostsHref, or else PostsDir.
func (c Config) HrefPrefix() string {
	if c.PostsHref != "" {
		return c.PostsHref
	}
	return filepath.ToSlash(c.PostsDir)
}
