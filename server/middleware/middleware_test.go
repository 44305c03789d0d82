package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger() (*zap.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(buf), zapcore.DebugLevel)), buf
}

func TestLog(t *testing.T) {
	logger, buf := newLogger()
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ping")) })
	mux.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	h := Log(mux, logger)

	for _, tt := range []struct {
		path   string
		status int
		logs   []string
	}{
		{"/ping", http.StatusOK, []string{"begin", "end: ok"}},
		{"/missing", http.StatusNotFound, []string{"end: error"}},
		{"/panic", http.StatusInternalServerError, []string{"end: panic", "boom"}},
	} {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			id, err := uuid.Parse(w.Header().Get(RequestIDHeader))
			require.NoError(t, err)
			assert.Contains(t, buf.String(), id.String())
			for _, s := range tt.logs {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

// in the server's order: a panic under WriteGzip still ends up a logged 500.
func TestLogPanicUnderGzip(t *testing.T) {
	logger, buf := newLogger()
	h := Log(WriteGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })), logger)
	r := httptest.NewRequest("GET", "/site-links.html", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, buf.String(), `"status_code":500`)
}

func TestWriteGzip(t *testing.T) {
	body := strings.Repeat("<div class=\"card\"></div>\n", 100)
	h := WriteGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) }))

	t.Run("accepted", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/site-links.html", nil)
		r.Header.Set("Accept-Encoding", "gzip, deflate")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})
	t.Run("not accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/site-links.html", nil))
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body, w.Body.String())
	})
	t.Run("range", func(t *testing.T) {
		h := WriteGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeContent(w, r, "site-links.html", time.Time{}, strings.NewReader(body))
		}))
		r := httptest.NewRequest("GET", "/site-links.html", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		r.Header.Set("Range", "bytes=0-9")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body[:10], w.Body.String())
	})
	t.Run("not found", func(t *testing.T) {
		h := WriteGzip(http.NotFoundHandler())
		r := httptest.NewRequest("GET", "/missing.html", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Contains(t, w.Body.String(), "404 page not found")
	})
	t.Run("already compressed", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/diagram.png", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body, w.Body.String())
	})
}
