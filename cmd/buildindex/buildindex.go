// buildindex writes the site's index page: a card for every rendered post, with its title, date, and a short summary.
// It's configured entirely through the environment (see index.ConfigFromEnv); by default it reads _posts/*.html and writes site-links.html.
//
//	usage:
//	   buildindex
//	   LAYOUT=sections buildindex
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/postindex/index"
	"gitlab.com/efronlicht/postindex/observability/logging"
	"go.uber.org/zap"
)

func main() {
	logger := logging.Setup(logging.NewMeta("buildindex"), enve.BoolOr("DEBUG", false))
	defer logger.Sync()
	if len(os.Args) != 1 {
		logger.Fatal("expected no command-line arguments: configure buildindex with environment variables", zap.Strings("args", os.Args[1:]))
	}
	cfg := index.ConfigFromEnv()
	// relative paths in cfg resolve against the working directory, the same as links in the index page do.
	report, err := index.Build(afero.NewOsFs(), cfg, logger)
	if err != nil {
		logger.Fatal("build index", zap.Error(err))
	}
	fmt.Println(report)
}
