// rendermd renders a directory of markdown drafts into the HTML posts that buildindex and buildrss read.
// Each post gets a <title> from its first "# heading" (or its file name), a <small> date from a YYYY-MM-DD file name prefix,
// and a body that's sanitized and syntax-highlighted. .png and .gif files are copied as-is.
//
//	usage:
//	   rendermd SRC DST
//	   rendermd drafts _posts
package main

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sourcegraph/syntaxhighlight"
	"github.com/spf13/afero"
	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/observability/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logging.Setup(logging.NewMeta("rendermd"), enve.BoolOr("DEBUG", false))
	defer logger.Sync()
	if len(os.Args) != 3 {
		logger.Fatal("expected two command-line arguments\nusage:\trendermd SRC DST")
	}
	srcDir, dstDir := must(filepath.Abs(os.Args[1])), must(filepath.Abs(os.Args[2]))
	r := newRenderer(enve.StringOr("CSS_HREF", "/assets/css/style.css"))
	results, err := renderDir(afero.NewOsFs(), srcDir, dstDir, r, logger)
	if err != nil {
		logger.Fatal("render markdown", zap.Error(err))
	}
	const format = "%s\t->\t%s\n"
	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintf(tw, format, "src", "dst")
	fmt.Fprintf(tw, format, strings.Repeat("-", 20), strings.Repeat("-", 20))
	for _, res := range results {
		fmt.Fprintf(tw, format, res.src, res.dst)
	}
	tw.Flush()
}

type result struct{ src, dst string }

// renderDir renders every markdown file under srcDir into dstDir (flattened: drafts/a/b.md becomes dst/b.html) and copies images.
// Markdown rendering is CPU-bound, so files are rendered in parallel; results come back in walk (lexical) order.
func renderDir(fsys afero.Fs, srcDir, dstDir string, r *renderer, logger *zap.Logger) ([]result, error) {
	if err := fsys.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dstDir, err)
	}
	logger.Info("scanning...", zap.String("src", srcDir), zap.String("dst", dstDir))
	var (
		g       errgroup.Group
		results []result // appended to by the walk only, never by the goroutines.
	)
	g.SetLimit(runtime.NumCPU())
	srcOf := make(map[string]string) // dst -> src, since drafts are flattened.
	walkFunc := func(srcPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() && srcPath == dstDir && srcPath != srcDir { // rendering into a subdirectory of the drafts: don't read our own output.
			return filepath.SkipDir
		}
		var dstPath string
		switch filepath.Ext(srcPath) {
		default:
			return nil
		case ".gif", ".png":
			dstPath = filepath.Join(dstDir, filepath.Base(srcPath))
		case ".md":
			dstPath = filepath.Join(dstDir, strings.TrimSuffix(filepath.Base(srcPath), ".md")+".html")
		}
		if prev, ok := srcOf[dstPath]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, srcPath, dstPath)
		}
		srcOf[dstPath] = srcPath
		if filepath.Ext(srcPath) != ".md" {
			g.Go(func() error { return copyFile(fsys, srcPath, dstPath) })
		} else {
			g.Go(func() error {
				src, err := afero.ReadFile(fsys, srcPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", srcPath, err)
				}
				page, err := r.render(filepath.Base(srcPath), src)
				if err != nil {
					return fmt.Errorf("render %s: %w", srcPath, err)
				}
				return afero.WriteFile(fsys, dstPath, page, 0o644)
			})
		}
		logger.Debug("queued", zap.String("src", srcPath), zap.String("dst", dstPath))
		results = append(results, result{src: srcPath, dst: dstPath})
		return nil
	}
	walkErr := afero.Walk(fsys, srcDir, walkFunc)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return results, nil
}

func copyFile(fsys afero.Fs, src, dst string) error {
	b, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return afero.WriteFile(fsys, dst, b, 0o644)
}

var (
	findtitleRE = regexp.MustCompile(`(?m)^# (.+)`)            // like # Golang Quirks & Intermediate Tricks, Pt 1: Declarations, Control Flow, & Typesystem
	finddateRE  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\b`) // like 2024-01-02-hello.md
	languageRE  = regexp.MustCompile(`^language-[\w+-]+$`)
	endTitleRE  = regexp.MustCompile(`(?i)<(/title)`) // the only thing that can end a <title> early.
)

type renderer struct {
	css    string
	policy *bluemonday.Policy
}

func newRenderer(css string) *renderer {
	// drafts are mostly trusted, but they're also mostly copy-pasted.
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(languageRE).OnElements("code")
	return &renderer{css: css, policy: policy}
}

// render turns the markdown draft called name into a complete post page.
func (r *renderer) render(name string, src []byte) ([]byte, error) {
	b := markdown.NormalizeNewlines(src)
	var title string
	if match := findtitleRE.FindSubmatch(b); len(match) > 1 {
		title = strings.TrimSpace(string(match[1])) // use title from markdown
	} else {
		title = strings.TrimSuffix(name, filepath.Ext(name)) // default to filename
	}
	var date string
	if match := finddateRE.FindStringSubmatch(name); len(match) > 1 {
		date = match[1]
	}

	md := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := r.policy.SanitizeBytes(markdown.ToHTML(b, nil, md))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}
	// find code-parts via css selector and replace them with highlighted versions
	var highlightErr error
	doc.Find(`code[class*="language-"]`).Each(func(_ int, s *goquery.Selection) {
		highlighted, err := syntaxhighlight.AsHTML([]byte(s.Text()))
		if err != nil {
			highlightErr = err
			return
		}
		s.SetHtml(string(highlighted))
	})
	if highlightErr != nil {
		return nil, fmt.Errorf("highlight: %w", highlightErr)
	}
	inner, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("serialize rendered html: %w", err)
	}

	page := []byte(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
`)
	// <title> holds text, not markup: the title goes in as written, so the index reads back exactly what the heading said.
	page = fmt.Appendf(page, "<title>%s</title>\n", endTitleRE.ReplaceAllString(title, "&lt;$1"))
	page = fmt.Appendf(page, `<link rel="stylesheet" type="text/css" href="%s">`+"\n", html.EscapeString(r.css))
	page = append(page, "</head>\n<body>\n<article>\n"...)
	if date != "" {
		page = fmt.Appendf(page, "<small>%s</small>\n", date)
	}
	page = append(page, inner...)
	return append(page, "\n</article>\n</body>\n</html>\n"...), nil
}

func must[T any](t T, err error) T {
	if err != nil {
		_, f, line, _ := runtime.Caller(1)
		fmt.Fprintf(os.Stderr, "%s %d: fatal err: %v\n", f, line, err)
		os.Exit(1)
	}
	return t
}
