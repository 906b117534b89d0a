package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-atlas/internal/catalog"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years available in the catalog",
	Long: `Years scans the data directory for year subdirectories and lists them
most recent first. An absent data directory yields an empty list.`,
	RunE: runYears,
}

func runYears(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	store := catalog.NewStore(cfg.Catalog)
	years := store.ListYears()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(years)
	}

	if len(years) == 0 {
		fmt.Println("No years found.")
		return nil
	}
	for _, y := range years {
		fmt.Println(y)
	}
	return nil
}

func init() {
	yearsCmd.Flags().Bool("json", false, "output years as JSON")

	rootCmd.AddCommand(yearsCmd)
}
