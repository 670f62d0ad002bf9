// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/refcat/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Text is the FTS5 full-text search string over titles and abstracts.
	Text string

	// YearFrom and YearTo bound the publication year, inclusive. Zero
	// leaves the bound open.
	YearFrom int
	YearTo   int

	// Journal filters by case-insensitive journal substring.
	Journal string

	// Author filters by case-insensitive author substring.
	Author string

	// MaxResults limits result count. Zero uses the index default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.YearFrom == 0 && q.YearTo == 0 && q.Journal == "" && q.Author == ""
}

// Search queries the index with optional full-text search and structured
// filters. Results are ranked by relevance for full-text queries or
// sorted by year and title otherwise.
func (ix *Index) Search(ctx context.Context, opts QueryOptions) ([]types.Record, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = ix.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != "" && ix.fts
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.title, r.authors, r.year, r.journal, r.volume, r.issue, r.pages,
				r.doi, r.abstract, r.source_path, r.segment
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT r.id, r.title, r.authors, r.year, r.journal, r.volume, r.issue, r.pages,
				r.doi, r.abstract, r.source_path, r.segment
			FROM records r
			WHERE 1=1`)
		if opts.Text != "" {
			// No fts5 module in this build; match titles and abstracts
			// by substring instead.
			qb.WriteString(` AND (r.title LIKE ? OR r.abstract LIKE ?)`)
			pattern := "%" + opts.Text + "%"
			args = append(args, pattern, pattern)
		}
	}

	if opts.YearFrom != 0 {
		qb.WriteString(` AND r.year >= ?`)
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo != 0 {
		qb.WriteString(` AND r.year <= ?`)
		args = append(args, opts.YearTo)
	}
	if opts.Journal != "" {
		qb.WriteString(` AND r.journal LIKE ?`)
		args = append(args, "%"+opts.Journal+"%")
	}
	if opts.Author != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.authors) WHERE value LIKE ?)`)
		args = append(args, "%"+opts.Author+"%")
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.year, r.title`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := ix.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []types.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// Get returns the indexed record for an identifier, or an error wrapping
// ErrNotFound.
func (ix *Index) Get(ctx context.Context, identifier string) (types.Record, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT id, title, authors, year, journal, volume, issue, pages, doi, abstract, source_path, segment
		 FROM records WHERE id = ?`, identifier)

	rec, err := scanRecordRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Record{}, fmt.Errorf("identifier %q: %w", identifier, ErrNotFound)
		}
		return types.Record{}, err
	}
	return rec, nil
}

// IndexStats summarizes the indexed corpus.
type IndexStats struct {
	Records     int            `json:"records" yaml:"records"`
	Files       int            `json:"files" yaml:"files"`
	WithDOI     int            `json:"with_doi" yaml:"with_doi"`
	YearMin     int            `json:"year_min" yaml:"year_min"`
	YearMax     int            `json:"year_max" yaml:"year_max"`
	TopJournals []JournalCount `json:"top_journals" yaml:"top_journals"`
}

// JournalCount pairs a journal name with its record count.
type JournalCount struct {
	Journal string `json:"journal" yaml:"journal"`
	Count   int    `json:"count" yaml:"count"`
}

const topJournalsLimit = 10

// Stats computes corpus-level counts from the index.
func (ix *Index) Stats(ctx context.Context) (IndexStats, error) {
	var stats IndexStats

	err := ix.db.QueryRowContext(ctx,
		`SELECT count(*),
			count(DISTINCT source_path),
			count(CASE WHEN doi != '' THEN 1 END),
			coalesce(min(CASE WHEN year != 0 THEN year END), 0),
			coalesce(max(year), 0)
		 FROM records`,
	).Scan(&stats.Records, &stats.Files, &stats.WithDOI, &stats.YearMin, &stats.YearMax)
	if err != nil {
		return stats, fmt.Errorf("computing stats: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT journal, count(*) AS n FROM records
		 WHERE journal != ''
		 GROUP BY journal ORDER BY n DESC, journal LIMIT ?`, topJournalsLimit)
	if err != nil {
		return stats, fmt.Errorf("computing journal stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jc JournalCount
		if err := rows.Scan(&jc.Journal, &jc.Count); err != nil {
			return stats, fmt.Errorf("scanning journal stats: %w", err)
		}
		stats.TopJournals = append(stats.TopJournals, jc)
	}

	return stats, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(rows *sql.Rows) (types.Record, error) {
	return scanRecordRow(rows)
}

func scanRecordRow(row rowScanner) (types.Record, error) {
	var (
		rec         types.Record
		authorsJSON sql.NullString
	)

	err := row.Scan(
		&rec.Identifier, &rec.Title, &authorsJSON, &rec.Year,
		&rec.Journal, &rec.Volume, &rec.Issue, &rec.Pages, &rec.DOI,
		&rec.Abstract, &rec.SourcePath, &rec.Segment,
	)
	if err != nil {
		return types.Record{}, err
	}

	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &rec.Authors)
	}
	return rec, nil
}
