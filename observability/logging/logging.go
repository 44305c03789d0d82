// package logging sets up the zap logger shared by the site's tools.
// Every tool logs to standard error, so that standard output stays free for the one line of results.
package logging

import (
	"io"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Meta is everything you might want to know about a run of a tool, all in one place.
// It's too heavyweight to add to every log line, so we log it once at startup and tag the rest with the RunID.
type Meta struct {
	AppName string
	RunID   string // unique for each run.
	Start   time.Time
	OS      struct {
		Host string
		PID  int
		User string
	}
	Runtime struct{ GOARCH, GOOS, Version string }
}

// NewMeta collects the Meta for the running process.
func NewMeta(app string) Meta {
	m := Meta{AppName: app, RunID: uuid.New().String(), Start: time.Now()}
	m.OS.Host, _ = os.Hostname()
	m.OS.PID = os.Getpid()
	if u, err := user.Current(); err == nil {
		m.OS.User = u.Username
	}
	m.Runtime.GOARCH, m.Runtime.GOOS, m.Runtime.Version = runtime.GOARCH, runtime.GOOS, runtime.Version()
	return m
}

// New builds a console logger writing to w at the given level.
// Set DEBUG=true to see per-post logs.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = nil
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level))
}

// Setup builds the logger for the tool described by meta: it writes to stderr, replaces the zap globals, and captures the standard library's log package
// (enve reports its fallbacks there). The returned logger is tagged with the run ID; the full Meta is logged once.
// Call Sync before exiting.
func Setup(meta Meta, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	logger := New(os.Stderr, level).Named(meta.AppName).With(zap.String("run_id", meta.RunID))
	zap.ReplaceGlobals(logger)
	zap.RedirectStdLog(logger)
	logger.Debug("metadata dump", zap.Reflect("meta", meta))
	return logger
}
