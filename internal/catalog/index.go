// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/refcat/pkg/types"
)

const dbFile = "catalog.db"

// Index is the persistent SQLite catalog index. Full-text search over
// titles and abstracts uses an FTS5 virtual table kept in sync by
// triggers. The fts5 module requires building with -tags=sqlite_fts5
// (the mage targets pass it); without it, text search falls back to
// LIKE matching on the records table.
type Index struct {
	db         *sql.DB
	indexDir   string
	maxResults int
	fts        bool
}

// NewIndex opens or creates the catalog index at indexDir/catalog.db,
// creating the schema if it does not exist.
func NewIndex(cfg types.CatalogConfig) (*Index, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = "index"
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	ix := &Index{
		db:         db,
		indexDir:   indexDir,
		maxResults: maxResults,
	}

	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			year INTEGER,
			journal TEXT,
			volume TEXT,
			issue TEXT,
			pages TEXT,
			doi TEXT,
			abstract TEXT NOT NULL,
			source_path TEXT NOT NULL,
			segment INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_year ON records(year)`,
		`CREATE INDEX IF NOT EXISTS idx_records_journal ON records(journal)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source_path ON records(source_path)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source_path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := ix.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		ix.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
		END`,
		`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
		// Backfill rows indexed by a build that lacked fts5.
		`INSERT INTO records_fts(records_fts) VALUES('rebuild')`,
	}
	for i, stmt := range ftsStatements {
		if _, err := ix.db.Exec(stmt); err != nil {
			// A driver built without -tags=sqlite_fts5 has no fts5
			// module. Degrade to LIKE search rather than refusing to
			// open the index.
			if i == 0 && strings.Contains(err.Error(), "no such module") {
				return nil
			}
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	ix.fts = true

	return nil
}
