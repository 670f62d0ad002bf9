// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcat/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus-level counts from the catalog index",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := catalogConfig(cmd)
	ix, err := catalog.NewIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	stats, err := ix.Stats(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Records:   %d\n", stats.Records)
	fmt.Printf("Files:     %d\n", stats.Files)
	fmt.Printf("With DOI:  %d\n", stats.WithDOI)
	if stats.YearMin != 0 {
		fmt.Printf("Years:     %d-%d\n", stats.YearMin, stats.YearMax)
	}
	if len(stats.TopJournals) > 0 {
		fmt.Println("Top journals:")
		for _, jc := range stats.TopJournals {
			fmt.Printf("  %4d  %s\n", jc.Count, jc.Journal)
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output stats as JSON")

	rootCmd.AddCommand(statsCmd)
}
