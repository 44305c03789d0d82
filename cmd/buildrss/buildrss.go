// buildrss writes an RSS feed of the site's posts, in the same order and with the same summaries as the index page.
// It reads the same environment as buildindex, plus FEED_TITLE, FEED_DESCRIPTION, BASE_URL, FEED_FILE, and FEED_TTL.
//
//	usage:
//	   BASE_URL=https://eblog.fly.dev buildrss
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/feed"
	"gitlab.com/efronlicht/postindex/observability/logging"
	"go.uber.org/zap"
)

func main() {
	logger := logging.Setup(logging.NewMeta("buildrss"), enve.BoolOr("DEBUG", false))
	defer logger.Sync()
	if len(os.Args) != 1 {
		logger.Fatal("expected no command-line arguments: configure buildrss with environment variables", zap.Strings("args", os.Args[1:]))
	}
	cfg := feed.ConfigFromEnv()
	n, err := feed.Build(afero.NewOsFs(), cfg, time.Now(), logger)
	if err != nil {
		logger.Fatal("build feed", zap.Error(err))
	}
	fmt.Printf("Wrote %s (%d items).\n", cfg.OutFile, n)
}
