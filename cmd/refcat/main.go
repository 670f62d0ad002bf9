// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refcat CLI, a reference-corpus
// ingestion and indexing utility for directories of markdown
// bibliographic records.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refcat/internal/secrets"
	"github.com/pdiddy/refcat/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the refcat CLI.
var rootCmd = &cobra.Command{
	Use:   "refcat",
	Short: "Ingest and query a corpus of bibliographic records",
	Long: `refcat ingests a directory tree of markdown files, each holding one or
more bibliographic records (title heading, bold-labeled metadata lines, an
abstract section, and an optional delimiter between concatenated records),
into a SQLite catalog index with full-text search over titles and abstracts.

Each operation is a subcommand: ingest, query, get, export, stats, and
resolve.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refcat.yaml or ~/.config/refcat/config.yaml)")
	rootCmd.PersistentFlags().String("index-dir", "", "directory holding the catalog index (default: index)")
	rootCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results (default: 20)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refcat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refcat"))
		}
	}

	viper.SetEnvPrefix("REFCAT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// catalogConfig builds the catalog configuration from flags, falling
// back to the config file for unset values.
func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = viper.GetString("catalog.index_dir")
	}
	if indexDir == "" {
		indexDir = "index"
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults <= 0 {
		maxResults = viper.GetInt("catalog.max_results")
	}

	return types.CatalogConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
