// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refcat/internal/catalog"
	"github.com/pdiddy/refcat/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <root-dir>",
	Short: "Scan a corpus directory and build the catalog index",
	Long: `Ingest walks a directory tree of markdown record files, parses each
delimiter-separated segment into a bibliographic record, and populates the
SQLite catalog index. Unchanged files are skipped on subsequent runs.

Malformed segments and unreadable files are reported as warnings and do not
abort the run; only a missing root directory is fatal.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := catalogConfig(cmd)
	strict, _ := cmd.Flags().GetBool("strict")
	cfg.Strict = strict

	ix, err := catalog.NewIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	cat := catalog.New(cfg)
	summary, err := ix.Ingest(context.Background(), args[0], scanConfig(cmd), cat, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("catalog holds %d records\n", cat.Len())
	if len(summary.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s) during ingestion\n", len(summary.Warnings))
	}
	return nil
}

func scanConfig(cmd *cobra.Command) types.ScanConfig {
	exts, _ := cmd.Flags().GetStringSlice("ext")
	if len(exts) == 0 {
		exts = viper.GetStringSlice("scan.extensions")
	}
	return types.ScanConfig{Extensions: exts}
}

func init() {
	ingestCmd.Flags().Bool("strict", false, "treat duplicate identifiers as fatal instead of overwriting")
	ingestCmd.Flags().StringSlice("ext", nil, "file extensions to ingest (default: .md)")

	rootCmd.AddCommand(ingestCmd)
}
