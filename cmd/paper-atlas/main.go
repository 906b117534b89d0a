// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-atlas CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-atlas/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-atlas CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-atlas",
	Short: "Browsable catalog of classified research papers",
	Long: `paper-atlas serves a read-only catalog of research papers that a
classification pipeline has grouped by year and category. It loads the
pipeline's JSON output from disk, filters it in memory, and exposes the
results over a small HTTP API and through CLI subcommands.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-atlas.yaml or ~/.config/paper-atlas/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "root directory of classification output (overrides config)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-atlas")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-atlas"))
		}
	}

	viper.SetEnvPrefix("PAPER_ATLAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig resolves the effective configuration: documented defaults,
// overridden by the config file and environment, overridden by flags.
func appConfig() types.AppConfig {
	var cfg types.AppConfig

	cfg.Catalog.DataDir = viper.GetString("catalog.data_dir")
	cfg.Catalog.RunSelection = types.RunSelection(viper.GetString("catalog.run_selection"))
	cfg.Query.DefaultPageSize = viper.GetInt("query.default_page_size")
	cfg.Query.MaxPageSize = viper.GetInt("query.max_page_size")
	cfg.Server.ListenAddr = viper.GetString("server.listen_addr")

	if dir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dir != "" {
		cfg.Catalog.DataDir = dir
	}

	cfg.Defaults()
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
