package posts

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Ext is the extension of a rendered post.
const Ext = ".html"

// Scan lists the posts under root, as slash-separated paths relative to root, newest first.
// "Newest" is a naming convention: posts are sorted by path, descending, so date-prefixed names (2024-02-01.html) come out in reverse-chronological order.
// If recursive is false, only the direct children of root are considered.
//
// A root that doesn't exist is reported as an error wrapping fs.ErrNotExist; an empty root is not an error.
func Scan(fsys afero.Fs, root string, recursive bool) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat posts root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("posts root %s is not a directory", root)
	}
	var paths []string
	if !recursive {
		infos, err := afero.ReadDir(fsys, root)
		if err != nil {
			return nil, fmt.Errorf("read posts root %s: %w", root, err)
		}
		for _, fi := range infos {
			if !fi.IsDir() && filepath.Ext(fi.Name()) == Ext {
				paths = append(paths, fi.Name())
			}
		}
	} else {
		walkFunc := func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return fmt.Errorf("walk %s: %w", p, err)
			}
			if fi.IsDir() || filepath.Ext(p) != Ext {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			paths = append(paths, filepath.ToSlash(rel))
			return nil
		}
		if err := afero.Walk(fsys, root, walkFunc); err != nil {
			return nil, err
		}
	}
	sort.Slice(paths, func(i, j int) bool { return comparePaths(paths[i], paths[j]) > 0 })
	return paths, nil
}

// comparePaths compares slash-separated paths segment by segment, so "a/x.html" sorts before "a-b.html" (the directory "a" is a prefix of "a-b.html").
func comparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}

// SectionOf is the section a post belongs to: the first segment of its path, or General if it sits directly under the root.
func SectionOf(p string) string { return sectionName(topDir(p)) }

func topDir(p string) string {
	if dir, _, ok := strings.Cut(p, "/"); ok {
		return dir
	}
	return ""
}

func sectionName(dir string) string {
	if dir == "" {
		return General
	}
	return dir
}

// Group splits posts into sections, sorted by name. Posts keep their relative order within a section.
// Posts are grouped by directory, not by name, so a top-level directory called General doesn't swallow the root's posts:
// both sections are kept, the root's first.
func Group(posts []Post) []Section {
	byDir := lo.GroupBy(posts, func(p Post) string { return topDir(p.Path) })
	dirs := lo.Keys(byDir)
	sort.Slice(dirs, func(i, j int) bool {
		if a, b := sectionName(dirs[i]), sectionName(dirs[j]); a != b {
			return a < b
		}
		return dirs[i] < dirs[j]
	})
	sections := make([]Section, len(dirs))
	for i, dir := range dirs {
		sections[i] = Section{Name: sectionName(dir), Dir: dir, Posts: byDir[dir]}
	}
	return sections
}

// Base is the file name of a post, without its directory.
func Base(p string) string { return path.Base(p) }

func joinRoot(root, p string) string { return filepath.Join(root, filepath.FromSlash(p)) }
