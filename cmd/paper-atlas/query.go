package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-atlas/internal/catalog"
	"github.com/pdiddy/paper-atlas/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a year of the catalog from the command line",
	Long: `Query loads the snapshot for a year and applies the same keyword and
category filters the HTTP API offers. Results print as a table by default.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		return fmt.Errorf("--year is required")
	}

	text, _ := cmd.Flags().GetString("q")
	categories, _ := cmd.Flags().GetStringSlice("category")
	fields, _ := cmd.Flags().GetStringSlice("field")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	store := catalog.NewStore(cfg.Catalog)
	svc := query.NewService(store, cfg.Query, os.Stderr)

	res := svc.HandleQuery(query.Request{
		Year:       year,
		Text:       text,
		Categories: categories,
		Fields:     fields,
		Page:       page,
		PageSize:   pageSize,
	})

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Error != "" {
		return fmt.Errorf("%s", res.Error)
	}

	formatResultTable(res, os.Stdout)
	return nil
}

// formatResultTable writes one query result page as a human-readable table.
func formatResultTable(res query.Result, w io.Writer) {
	if res.TotalCount == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-60s  %-30s  %-20s  %s\n", "Title", "Category", "Authors", "Venue")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, p := range res.Papers {
		fmt.Fprintf(w, "%-60s  %-30s  %-20s  %s\n",
			truncate(p.Title, 60), truncate(p.Category, 30),
			formatAuthors(p.Authors), p.Venue)
	}

	fmt.Fprintf(w, "\npage %d/%d, %d papers total\n", res.Page, res.TotalPages, res.TotalCount)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	queryCmd.Flags().Int("year", 0, "catalog year to query (required)")
	queryCmd.Flags().String("q", "", "keyword to match against title and abstract")
	queryCmd.Flags().StringSlice("category", nil, "restrict to category labels (repeatable)")
	queryCmd.Flags().StringSlice("field", nil, "text-match fields: title, abstract, authors")
	queryCmd.Flags().Int("page", 1, "page number (1-indexed)")
	queryCmd.Flags().Int("page-size", 0, "papers per page (default from config)")
	queryCmd.Flags().Bool("json", false, "output the full query result as JSON")

	rootCmd.AddCommand(queryCmd)
}
