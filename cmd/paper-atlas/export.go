package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-atlas/internal/catalog"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a year snapshot to a YAML or JSON file",
	Long: `Export loads the snapshot for a year and writes it to a single file,
including category buckets, counts, and any load warnings.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		return fmt.Errorf("--year is required")
	}
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	store := catalog.NewStore(cfg.Catalog)
	snap, err := store.LoadSnapshot(year, os.Stderr)
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		if out == "" {
			out = fmt.Sprintf("atlas-%d.yaml", year)
		}
		err = catalog.ExportYAML(snap, out)
	case "json":
		if out == "" {
			out = fmt.Sprintf("atlas-%d.json", year)
		}
		err = catalog.ExportJSON(snap, out)
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d papers (%d categories) to %s\n", snap.TotalCount, len(snap.Buckets), out)
	return nil
}

func init() {
	exportCmd.Flags().Int("year", 0, "catalog year to export (required)")
	exportCmd.Flags().String("out", "", "output file path (default atlas-<year>.<format>)")
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(exportCmd)
}
