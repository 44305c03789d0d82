// package middleware wraps the preview server's handlers. Middleware executes Last-In, First-Out.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id the server gave a request, so a response can be matched to its log lines.
const RequestIDHeader = "X-Request-Id"

// Log gives each request a fresh id, logs its beginning and end, and turns a panic in h into a 500.
func Log(h http.Handler, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.New()
		w.Header().Set(RequestIDHeader, id.String())
		logger := logger.With(zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Stringer("request_id", id))
		logger.Debug("begin", zap.String("user-agent", r.UserAgent()), zap.String("remote_addr", r.RemoteAddr))

		lw := &writer{ResponseWriter: w}
		defer func() {
			elapsed := time.Since(start)
			if p := recover(); p != nil {
				lw.WriteHeader(http.StatusInternalServerError)
				logger.Error("end: panic", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()), zap.Int("status_code", lw.statusCode))
				return
			}
			if lw.statusCode >= 400 {
				logger.Warn("end: error", zap.Int("status_code", lw.statusCode), zap.Duration("elapsed", elapsed))
				return
			}
			logger.Info("end: ok", zap.Int("status_code", lw.statusCode), zap.Int("content_length", lw.contentLength), zap.Duration("elapsed", elapsed))
		}()
		h.ServeHTTP(lw, r)
	}
}

// writer intercepts calls to WriteHeader() and Write(), recording the status code and the total number of bytes written to the response body.
type writer struct {
	http.ResponseWriter
	statusCode, contentLength int
}

func (w *writer) Write(b []byte) (int, error) {
	if w.statusCode < 200 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.contentLength += n
	return n, err
}

func (w *writer) WriteHeader(statusCode int) {
	if w.statusCode >= 200 {
		return // superfluous
	}
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
