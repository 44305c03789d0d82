// package static serves the built site straight from disk: the index page, the posts, and their assets.
package static

import (
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Site is an http.Handler for a directory. Directories without an index.html are 404s, not listings.
type Site struct {
	fs    afero.Fs
	files http.Handler
}

// New serves fsys read-only.
func New(fsys afero.Fs) *Site {
	fsys = afero.NewReadOnlyFs(fsys)
	return &Site{fs: fsys, files: http.FileServer(neuteredFs{afero.NewHttpFs(fsys).Dir("/")})}
}

// Dir serves the directory dir.
func Dir(dir string) *Site { return New(afero.NewBasePathFs(afero.NewOsFs(), dir)) }

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := strings.Trim(r.URL.Path, "/")
	if p != "" && path.Ext(p) == "" && s.isFile("/"+p+".html") { // they forgot to add .html: show them where to find it.
		http.Redirect(w, r, "/"+p+".html", http.StatusPermanentRedirect)
		return
	}
	s.files.ServeHTTP(w, r)
}

func (s *Site) isFile(name string) bool {
	fi, err := s.fs.Stat(name)
	return err == nil && !fi.IsDir()
}

// neuteredFs is a file system that returns 404 when a directory contains no index.html
// to prevent http.FileServer from rendering a listing of the directory.
type neuteredFs struct {
	http.FileSystem
}

func (nfs neuteredFs) Open(name string) (http.File, error) {
	f, err := nfs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		index, err := nfs.FileSystem.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, err
		}
		index.Close()
	}
	return f, nil
}
