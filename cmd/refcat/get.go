// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcat/internal/catalog"
	"github.com/pdiddy/refcat/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Print one catalog record by identifier",
	Long: `Get looks up a single record by its identifier: the DOI when the source
listed one, otherwise the derived hash printed during ingestion and by query.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg := catalogConfig(cmd)
	ix, err := catalog.NewIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	rec, err := ix.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecord(os.Stdout, rec)
	return nil
}

func printRecord(w io.Writer, rec types.Record) {
	fmt.Fprintf(w, "Identifier: %s\n", rec.Identifier)
	fmt.Fprintf(w, "Title:      %s\n", rec.Title)
	if len(rec.Authors) > 0 {
		fmt.Fprintf(w, "Authors:    %s\n", strings.Join(rec.Authors, "; "))
	}
	if rec.Year != 0 {
		fmt.Fprintf(w, "Year:       %d\n", rec.Year)
	}
	if rec.Journal != "" {
		fmt.Fprintf(w, "Journal:    %s\n", rec.Journal)
	}
	if rec.Volume != "" {
		fmt.Fprintf(w, "Volume:     %s\n", rec.Volume)
	}
	if rec.Issue != "" {
		fmt.Fprintf(w, "Issue:      %s\n", rec.Issue)
	}
	if rec.Pages != "" {
		fmt.Fprintf(w, "Pages:      %s\n", rec.Pages)
	}
	if rec.DOI != "" {
		fmt.Fprintf(w, "DOI:        %s\n", rec.DOI)
	}
	if rec.SourcePath != "" {
		fmt.Fprintf(w, "Source:     %s (segment %d)\n", rec.SourcePath, rec.Segment)
	}
	fmt.Fprintf(w, "\n%s\n", rec.Abstract)
}

func init() {
	getCmd.Flags().Bool("json", false, "output the record as JSON")

	rootCmd.AddCommand(getCmd)
}
