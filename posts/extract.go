package posts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// first occurrence of each tag, up to the first matching close tag. no attributes, no nesting: <p><p>a</p>b</p> yields "<p>a".
var (
	titleRE = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	smallRE = regexp.MustCompile(`(?is)<small>(.*?)</small>`)
	paraRE  = regexp.MustCompile(`(?is)<p>(.*?)</p>`)
)

func extractFirst(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Extract pulls the metadata of the post at path p out of its text.
// The title falls back to the base name of p. Date and summary are left empty if their tag is missing or unterminated.
func Extract(p, text string, maxWords int) Post {
	post := Post{
		Path:       p,
		Title:      extractFirst(titleRE, text),
		Date:       extractFirst(smallRE, text),
		RawSummary: extractFirst(paraRE, text),
	}
	if post.Title == "" {
		post.Title = Base(p)
	}
	post.Summary = Summarize(post.RawSummary, maxWords)
	return post
}

// Load reads the post at root/p and extracts its metadata. Only a failure to read the file is an error.
func Load(fsys afero.Fs, root, p string, maxWords int) (Post, error) {
	b, err := afero.ReadFile(fsys, joinRoot(root, p))
	if err != nil {
		return Post{}, fmt.Errorf("read post %s: %w", p, err)
	}
	return Extract(p, Decode(b), maxWords), nil
}

// LoadAll is Scan followed by Load for every post found, in scan order.
func LoadAll(fsys afero.Fs, root string, recursive bool, maxWords int) ([]Post, error) {
	paths, err := Scan(fsys, root, recursive)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(paths))
	for _, p := range paths {
		post, err := Load(fsys, root, p, maxWords)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
