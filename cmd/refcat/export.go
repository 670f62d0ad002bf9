// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcat/internal/catalog"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog records to YAML or JSON",
	Long: `Export writes the full catalog (or a filtered subset) as YAML or JSON
to stdout or a file. Supports the same filter flags as query for partial
exports.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	cfg := catalogConfig(cmd)
	ix, err := catalog.NewIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := ix.ExportYAML(context.Background(), opts, w); err != nil {
			return err
		}
	case "json":
		if err := ix.ExportJSON(context.Background(), opts, w); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	if outPath != "" {
		fmt.Printf("Exported to %s\n", outPath)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")
	addQueryFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}
