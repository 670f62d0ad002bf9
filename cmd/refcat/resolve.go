// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refcat/internal/catalog"
	"github.com/pdiddy/refcat/internal/parse"
	"github.com/pdiddy/refcat/internal/resolve"
	"github.com/pdiddy/refcat/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <doi>",
	Short: "Fetch canonical metadata for a DOI from Crossref",
	Long: `Resolve queries the Crossref REST API for the canonical metadata of a
DOI and prints it. With --compare, the fetched metadata is diffed against
the indexed record for the same DOI, flagging fields where the corpus
disagrees with the registry.

Set .secrets/crossref-mailto (or resolve.mailto in the config file) to a
contact address for Crossref polite-pool access.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig()
	client := &http.Client{Timeout: cfg.Timeout}

	rec, err := resolve.Crossref(context.Background(), client, args[0], cfg)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
	} else {
		printRecord(os.Stdout, rec)
	}

	compare, _ := cmd.Flags().GetBool("compare")
	if !compare {
		return nil
	}
	return compareWithIndex(cmd, rec)
}

// compareWithIndex diffs a Crossref record against the indexed record
// with the same DOI.
func compareWithIndex(cmd *cobra.Command, canonical types.Record) error {
	ix, err := catalog.NewIndex(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer ix.Close()

	local, err := ix.Get(context.Background(), parse.NormalizeDOI(canonical.DOI))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			fmt.Printf("\nDOI %s is not in the catalog.\n", canonical.DOI)
			return nil
		}
		return err
	}

	diffs := diffRecords(local, canonical)
	if len(diffs) == 0 {
		fmt.Println("\nCatalog record matches Crossref.")
		return nil
	}

	fmt.Printf("\n%d field(s) differ from Crossref:\n", len(diffs))
	for _, d := range diffs {
		fmt.Printf("  %-8s catalog=%q crossref=%q\n", d.field, d.local, d.canonical)
	}
	return nil
}

type fieldDiff struct {
	field     string
	local     string
	canonical string
}

func diffRecords(local, canonical types.Record) []fieldDiff {
	var diffs []fieldDiff
	add := func(field, l, c string) {
		if l != c && c != "" {
			diffs = append(diffs, fieldDiff{field, l, c})
		}
	}

	add("title", local.Title, canonical.Title)
	add("journal", local.Journal, canonical.Journal)
	add("volume", local.Volume, canonical.Volume)
	add("issue", local.Issue, canonical.Issue)
	add("pages", local.Pages, canonical.Pages)
	if canonical.Year != 0 && local.Year != canonical.Year {
		add("year", fmt.Sprintf("%d", local.Year), fmt.Sprintf("%d", canonical.Year))
	}
	if len(canonical.Authors) > 0 {
		add("authors", strings.Join(local.Authors, "; "), strings.Join(canonical.Authors, "; "))
	}
	return diffs
}

func resolveConfig() types.ResolveConfig {
	cfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("resolve.timeout"),
			UserAgent: viper.GetString("resolve.user_agent"),
		},
		MailTo:     secretDefault("crossref-mailto", viper.GetString("resolve.mailto")),
		MaxRetries: viper.GetInt("resolve.max_retries"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "refcat/" + version
	}
	return cfg
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output the record as JSON")
	resolveCmd.Flags().Bool("compare", false, "diff the fetched metadata against the indexed record")

	rootCmd.AddCommand(resolveCmd)
}
