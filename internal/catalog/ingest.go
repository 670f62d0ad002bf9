// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pdiddy/refcat/internal/parse"
	"github.com/pdiddy/refcat/internal/scan"
	"github.com/pdiddy/refcat/pkg/types"
)

// IngestSummary holds counts from one ingestion run.
type IngestSummary struct {
	// Files is the number of source files indexed or updated.
	Files int

	// Records is the number of records inserted across those files.
	Records int

	// Replaced counts records that overwrote an earlier record with the
	// same identifier.
	Replaced int

	// SkippedFiles counts files unchanged since the previous run.
	SkippedFiles int

	// FailedSegments counts malformed segments that were skipped.
	FailedSegments int

	// Warnings lists the collected per-file and per-segment problems.
	Warnings []string
}

func (s *IngestSummary) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Ingest scans root for record files, parses them, and populates both
// the in-memory catalog and the SQLite index. Unchanged files are
// skipped on subsequent runs; their records are loaded from the index
// into the catalog instead, so re-ingesting an unchanged tree yields the
// same identifier set.
//
// Segment and file failures are isolated: each becomes a warning on the
// summary and processing continues. Only a missing root is fatal (the
// returned error wraps ErrNotFound). In strict mode a duplicate
// identifier aborts the run with a *DuplicateError.
func (ix *Index) Ingest(ctx context.Context, root string, scanCfg types.ScanConfig, cat *Catalog, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return summary, fmt.Errorf("corpus root %s: %w", root, ErrNotFound)
		}
		return summary, fmt.Errorf("corpus root %s: %w", root, err)
	}

	for path, err := range scan.Files(root, scanCfg) {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err != nil {
			fmt.Fprintf(w, "warning %v\n", err)
			summary.warn("%v", err)
			continue
		}

		if err := ix.ingestFile(ctx, path, cat, &summary, w); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nfiles: %d, records: %d, skipped files: %d, failed segments: %d, warnings: %d\n",
		summary.Files, summary.Records, summary.SkippedFiles, summary.FailedSegments, len(summary.Warnings))

	return summary, nil
}

// ingestFile processes one source file. Its returned error is fatal to
// the run; recoverable problems go onto the summary as warnings.
func (ix *Index) ingestFile(ctx context.Context, path string, cat *Catalog, summary *IngestSummary, w io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "warning %s: %v\n", path, err)
		summary.warn("%s: %v", path, err)
		return nil
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	// Check whether the file has changed since the previous run.
	var storedModTime string
	err = ix.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM ingest_status WHERE source_path = ?`, path,
	).Scan(&storedModTime)

	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s\n", path)
		summary.SkippedFiles++
		return ix.loadExisting(ctx, path, cat)
	}
	isUpdate := err == nil

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "warning %s: %v\n", path, err)
		summary.warn("%s: %v", path, err)
		return nil
	}

	records, segErrs := parse.File(path, string(data))
	for _, segErr := range segErrs {
		fmt.Fprintf(w, "warning %v\n", segErr)
		summary.warn("%v", segErr)
		summary.FailedSegments++
	}

	for _, rec := range records {
		replaced, err := cat.Insert(rec)
		if err != nil {
			return err
		}
		if replaced {
			fmt.Fprintf(w, "warning duplicate identifier %s overwritten by %s\n", rec.Identifier, path)
			summary.warn("duplicate identifier %s overwritten by %s", rec.Identifier, path)
			summary.Replaced++
		}
	}

	if err := ix.upsertFile(ctx, path, records, modTime, isUpdate); err != nil {
		fmt.Fprintf(w, "warning %s: %v\n", path, err)
		summary.warn("%s: %v", path, err)
		return nil
	}

	if isUpdate {
		fmt.Fprintf(w, "updated %s (%d records)\n", path, len(records))
	} else {
		fmt.Fprintf(w, "indexed %s (%d records)\n", path, len(records))
	}
	summary.Files++
	summary.Records += len(records)
	return nil
}

// upsertFile writes a file's records to the index in one transaction,
// replacing any rows from a previous version of the same file.
func (ix *Index) upsertFile(ctx context.Context, path string, records []types.Record, modTime string, isUpdate bool) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE source_path = ?`, path); err != nil {
			return fmt.Errorf("deleting old records: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (id, title, authors, year, journal, volume, issue, pages, doi, abstract, source_path, segment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		authorsJSON, _ := json.Marshal(rec.Authors)
		_, err := stmt.ExecContext(ctx,
			rec.Identifier, rec.Title, string(authorsJSON), rec.Year,
			rec.Journal, rec.Volume, rec.Issue, rec.Pages, rec.DOI,
			rec.Abstract, rec.SourcePath, rec.Segment,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Identifier, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (source_path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// loadExisting copies a skipped file's indexed records into the
// in-memory catalog.
func (ix *Index) loadExisting(ctx context.Context, path string, cat *Catalog) error {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, title, authors, year, journal, volume, issue, pages, doi, abstract, source_path, segment
		 FROM records WHERE source_path = ? ORDER BY segment`, path)
	if err != nil {
		return fmt.Errorf("loading records for %s: %w", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if _, err := cat.Insert(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}
