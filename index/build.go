package index

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"gitlab.com/efronlicht/postindex/posts"
	"go.uber.org/zap"
)

// Report summarizes a finished build.
type Report struct {
	Out      string
	Layout   Layout
	Posts    int
	Sections int // always 0 in the Flat layout.
}

// String is the one-line summary printed by buildindex, e.g. "Wrote site-links.html (3 posts)."
func (r Report) String() string {
	if r.Layout == Sections {
		return fmt.Sprintf("Wrote %s (%d posts in %d sections).", r.Out, r.Posts, r.Sections)
	}
	return fmt.Sprintf("Wrote %s (%d posts).", r.Out, r.Posts)
}

// Build scans cfg.PostsDir, renders the index page, and overwrites cfg.OutFile with it.
// A missing posts root is logged and treated as empty. Any other filesystem error aborts the build before cfg.OutFile is touched.
func Build(fsys afero.Fs, cfg Config, logger *zap.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid config: %w", err)
	}
	logger = logger.With(zap.String("posts_dir", cfg.PostsDir), zap.String("layout", string(cfg.Layout)))
	recursive := cfg.Layout == Sections
	paths, err := posts.Scan(fsys, cfg.PostsDir, recursive)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("posts dir not found: writing an empty index", zap.Error(err))
		paths, err = nil, nil
	}
	if err != nil {
		return Report{}, fmt.Errorf("scan posts: %w", err)
	}
	logger.Debug("scanned posts", zap.Int("count", len(paths)))

	pp := make([]posts.Post, 0, len(paths))
	for _, p := range paths {
		post, err := posts.Load(fsys, cfg.PostsDir, p, cfg.MaxWords)
		if err != nil {
			return Report{}, err
		}
		logger.Debug("extracted post", zap.String("path", p), zap.String("title", post.Title), zap.Bool("dated", post.Date != ""), zap.Bool("summarized", post.Summary != ""))
		pp = append(pp, post)
	}

	report := Report{Out: cfg.OutFile, Layout: cfg.Layout, Posts: len(pp)}
	if cfg.Layout == Sections {
		report.Sections = len(posts.Group(pp))
	}
	if err := afero.WriteFile(fsys, cfg.OutFile, Render(cfg, pp), 0o644); err != nil {
		return Report{}, fmt.Errorf("write index %s: %w", cfg.OutFile, err)
	}
	logger.Info("wrote index", zap.String("out", cfg.OutFile), zap.Int("posts", report.Posts), zap.Int("sections", report.Sections))
	return report, nil
}
