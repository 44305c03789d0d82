// server previews the built site locally: the index page, the posts, and their assets, straight from SITE_DIR.
//
//	usage:
//	   buildindex && server
//	   PORT=3000 SITE_DIR=public server
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/observability/logging"
	"gitlab.com/efronlicht/postindex/server/middleware"
	"gitlab.com/efronlicht/postindex/server/static"
	"go.uber.org/zap"
)

var start = time.Now()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT)
	if err := Run(ctx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	log.Println("successful shutdown")
}

// Run the server until ctx is done.
func Run(ctx context.Context) (err error) {
	meta := logging.NewMeta("server")
	logger := logging.Setup(meta, enve.BoolOr("DEBUG", false))
	defer logger.Sync()
	dir := enve.StringOr("SITE_DIR", ".")
	index := "/" + strings.TrimPrefix(enve.StringOr("OUT_FILE", "site-links.html"), "/")
	router := Router(static.Dir(dir), index, meta, logger)

	server := http.Server{
		Addr:         fmt.Sprintf(":%04d", enve.IntOr("PORT", 8080)),
		Handler:      router,
		ReadTimeout:  enve.DurationOr("READ_TIMEOUT", 2*time.Second),
		WriteTimeout: enve.DurationOr("WRITE_TIMEOUT", 5*time.Second),
		IdleTimeout:  enve.DurationOr("IDLE_TIMEOUT", time.Minute),
		// don't accept new connections if already shutting down
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	logger.Sugar().Infof("took %s to start", time.Since(start))
	logger.Info("serving http", zap.String("addr", server.Addr), zap.String("dir", dir), zap.String("index", index))
	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()
	select {
	case err := <-errc: // couldn't even start: port in use, probably.
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done(): // wait for (ctrl+c)
	}

	logger.Debug(fmt.Sprintf("%v: shutting down server in %s", ctx.Err(), 2*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Router serves site, redirecting / to the index page, plus a couple of debug routes.
func Router(site http.Handler, index string, meta logging.Meta, logger *zap.Logger) http.Handler {
	metaJSON, _ := json.Marshal(meta)
	var router http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimSuffix(r.URL.Path, "/")
		switch {
		case r.Method != "GET" && r.Method != "HEAD":
			w.WriteHeader(http.StatusMethodNotAllowed)
		case p == "/debug/uptime":
			elapsed := time.Since(meta.Start)
			_, _ = fmt.Fprintf(w, "%3vh %02vm %02vs", math.Floor(elapsed.Hours()), math.Floor(math.Mod(elapsed.Minutes(), 60)), math.Floor(math.Mod(elapsed.Seconds(), 60)))
		case p == "/debug/meta":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(metaJSON)
		case p == "":
			http.Redirect(w, r, index, http.StatusTemporaryRedirect)
		default:
			// it's a preview: everything might change between builds.
			w.Header().Set("Cache-Control", "no-cache")
			site.ServeHTTP(w, r)
		}
	})
	// apply middleware. middleware executes Last-In, First-Out.
	router = middleware.WriteGzip(router)
	router = middleware.Log(router, logger)
	return router
}
