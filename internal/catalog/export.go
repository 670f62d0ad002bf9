// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the indexed records matching opts to w as YAML.
// An empty QueryOptions exports the whole catalog.
func (ix *Index) ExportYAML(ctx context.Context, opts QueryOptions, w io.Writer) error {
	opts.MaxResults = exportLimit
	records, err := ix.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the indexed records matching opts to w as indented JSON.
func (ix *Index) ExportJSON(ctx context.Context, opts QueryOptions, w io.Writer) error {
	opts.MaxResults = exportLimit
	records, err := ix.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
