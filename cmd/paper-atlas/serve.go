package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-atlas/internal/catalog"
	"github.com/pdiddy/paper-atlas/internal/query"
	"github.com/pdiddy/paper-atlas/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve starts the HTTP API over the classification output directory.
Year snapshots load lazily on first request and are cached until the
process restarts or a reload is requested via POST /api/reload/:year.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		cfg.Server.ListenAddr = addr
	}

	store := catalog.NewStore(cfg.Catalog)
	svc := query.NewService(store, cfg.Query, os.Stderr)

	years := svc.Years()
	if len(years) == 0 {
		fmt.Fprintf(os.Stderr, "warning: no year directories found under %s\n", cfg.Catalog.DataDir)
	} else {
		fmt.Fprintf(os.Stderr, "serving %d year(s): %v\n", len(years), years)
	}

	router := web.NewRouter(svc)
	return router.Run(cfg.Server.ListenAddr)
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default from config, \":8080\")")

	rootCmd.AddCommand(serveCmd)
}
