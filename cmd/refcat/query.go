// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcat/internal/catalog"
	"github.com/pdiddy/refcat/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the catalog with full-text search and filters",
	Long: `Query searches the catalog index using FTS5 full-text search over
titles and abstracts, structured filters (year range, journal substring,
author substring), or a combination of both.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := catalogConfig(cmd)
	ix, err := catalog.NewIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --year, --journal, or --author")
	}

	results, err := ix.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-5s  %-60s  %-30s  %s\n",
		"Rank", "Year", "Title", "Journal", "DOI")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))

	for i, r := range results {
		title := truncate(r.Title, 60)
		journal := truncate(r.Journal, 30)
		year := ""
		if r.Year != 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-5s  %-60s  %-30s  %s\n",
			i+1, year, title, journal, r.DOI)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most max runes, ending in "..." when cut.
// Slicing on runes keeps multi-byte characters in titles intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	text, _ := cmd.Flags().GetString("query")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}

	year, _ := cmd.Flags().GetInt("year")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	if year != 0 {
		yearFrom, yearTo = year, year
	}

	journal, _ := cmd.Flags().GetString("journal")
	author, _ := cmd.Flags().GetString("author")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Text:       text,
		YearFrom:   yearFrom,
		YearTo:     yearTo,
		Journal:    journal,
		Author:     author,
		MaxResults: limit,
	}
}

// addQueryFlags registers the filter flags shared by query and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search over titles and abstracts")
	cmd.Flags().Int("year", 0, "filter by exact publication year")
	cmd.Flags().Int("year-from", 0, "filter by minimum publication year")
	cmd.Flags().Int("year-to", 0, "filter by maximum publication year")
	cmd.Flags().String("journal", "", "filter by journal substring")
	cmd.Flags().String("author", "", "filter by author substring")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	addQueryFlags(queryCmd)
	queryCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(queryCmd)
}
