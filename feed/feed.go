// package feed builds an RSS 2.0 feed from the same posts the index page lists.
package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/spf13/afero"
	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/index"
	"gitlab.com/efronlicht/postindex/posts"
	"go.uber.org/zap"
)

type Config struct {
	Index       index.Config // where the posts are and how they're linked; the Sections layout means the whole tree is scanned.
	Title       string
	Description string
	BaseURL     string // absolute URL the index page is served from.
	OutFile     string
	TTL         int // minutes.
}

// ConfigFromEnv reads the index configuration (see index.ConfigFromEnv) and FEED_TITLE, FEED_DESCRIPTION, BASE_URL, FEED_FILE, and FEED_TTL.
func ConfigFromEnv() Config {
	return Config{
		Index:       index.ConfigFromEnv(),
		Title:       enve.StringOr("FEED_TITLE", "All Posts"),
		Description: enve.StringOr("FEED_DESCRIPTION", "every post on the site, newest first"),
		BaseURL:     enve.StringOr("BASE_URL", "http://localhost:8080"),
		OutFile:     enve.StringOr("FEED_FILE", "feed.xml"),
		TTL:         enve.IntOr("FEED_TTL", 1800),
	}
}

// Link is the absolute URL of the post at p.
func Link(baseURL, hrefPrefix, p string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(index.Href(hrefPrefix, p), "/")
}

// GUIDFor is stable across builds: the same link always gets the same GUID.
// It's a UUID derived from the link, not a permalink.
func GUIDFor(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

// Published parses a post's free-form date ("2024-01-02", "Jan 2, 2024", ...). Dates without a zone are UTC.
// It reports false if the date is empty, unparseable, or has no year: dateparse reads "Jan 2" as January 2nd of year 0.
func Published(date string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(date, time.UTC)
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}

// Build writes the feed for the posts under cfg.Index.PostsDir to cfg.OutFile, returning the number of items.
// Items are in the same order as on the index page. A post whose date can't be parsed is dated by its file's modification time.
func Build(fsys afero.Fs, cfg Config, now time.Time, logger *zap.Logger) (int, error) {
	if err := cfg.Index.Validate(); err != nil {
		return 0, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.OutFile == "" {
		return 0, errors.New("invalid config: missing feed file")
	}
	pp, err := posts.LoadAll(fsys, cfg.Index.PostsDir, cfg.Index.Layout == index.Sections, cfg.Index.MaxWords)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("posts dir not found: writing an empty feed", zap.Error(err))
		pp, err = nil, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load posts: %w", err)
	}
	prefix := cfg.Index.HrefPrefix()
	f := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimPrefix(cfg.Index.OutFile, "/")},
		Description: cfg.Description,
		Updated:     now,
		Items:       make([]*feeds.Item, 0, len(pp)),
	}
	for _, p := range pp {
		link := Link(cfg.BaseURL, prefix, p.Path)
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Summary,
			Id:          GUIDFor(link),
			IsPermaLink: "false",
		}
		if t, ok := Published(p.Date); ok {
			item.Created = t
		} else {
			logger.Debug("no parseable date: using modification time", zap.String("path", p.Path), zap.String("date", p.Date))
			fi, err := fsys.Stat(filepath.Join(cfg.Index.PostsDir, filepath.FromSlash(p.Path)))
			if err != nil {
				return 0, fmt.Errorf("stat post %s: %w", p.Path, err)
			}
			item.Created = fi.ModTime()
		}
		f.Add(item)
	}
	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Ttl = cfg.TTL
	doc, err := feeds.ToXML(rss)
	if err != nil {
		return 0, fmt.Errorf("marshal feed: %w", err)
	}
	if err := afero.WriteFile(fsys, cfg.OutFile, []byte(doc+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write feed %s: %w", cfg.OutFile, err)
	}
	logger.Info("wrote feed", zap.String("out", cfg.OutFile), zap.Int("items", len(f.Items)))
	return len(f.Items), nil
}
