package middleware

import (
	"compress/gzip"
	"net/http"
	"path"
	"strings"
)

// WriteGzip compresses the response body with GZip when it encounters an Accept-Encoding: gzip header.
// Files that are already compressed (.png, .gif, .jpg, .woff2) are passed through: a layer of gzip won't help.
// So are range requests, whose Content-Range counts uncompressed bytes, and any response that isn't a 200.
func WriteGzip(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		switch path.Ext(r.URL.Path) {
		case ".png", ".gif", ".jpg", ".woff2":
			h.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Range") != "" || !acceptsGzip(r) {
			h.ServeHTTP(w, r)
			return
		}
		gz := &gzipWriter{ResponseWriter: w}
		defer gz.Close()
		h.ServeHTTP(gz, r)
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept-Encoding") {
		if strings.Contains(v, "gzip") {
			return true
		}
	}
	return false
}

// gzipWriter decides whether to compress when the status is known.
type gzipWriter struct {
	http.ResponseWriter
	zip         *gzip.Writer // nil unless compressing.
	wroteHeader bool
}

// WriteHeader starts compressing a 200, dropping the uncompressed Content-Length the wrapped handler may have set.
func (gz *gzipWriter) WriteHeader(statusCode int) {
	if gz.wroteHeader {
		return // superfluous
	}
	gz.wroteHeader = true
	if statusCode == http.StatusOK && gz.Header().Get("Content-Encoding") == "" {
		gz.Header().Del("Content-Length")
		gz.Header().Set("Content-Encoding", "gzip")
		gz.zip = gzip.NewWriter(gz.ResponseWriter)
	}
	gz.ResponseWriter.WriteHeader(statusCode)
}

func (gz *gzipWriter) Write(p []byte) (n int, err error) {
	if !gz.wroteHeader {
		gz.WriteHeader(http.StatusOK)
	}
	if gz.zip == nil {
		return gz.ResponseWriter.Write(p)
	}
	return gz.zip.Write(p)
}

// Close flushes the gzip stream. If nothing was written it writes nothing either,
// so the status is still up for grabs: Log can turn a panic into a 500.
func (gz *gzipWriter) Close() error {
	if gz.zip == nil {
		return nil
	}
	return gz.zip.Close()
}
