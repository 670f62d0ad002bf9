// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog stores parsed bibliographic records: an in-memory
// catalog populated during one ingestion pass, and a SQLite index with
// FTS5 full-text search that persists across runs.
package catalog

import (
	"errors"
	"fmt"
	"iter"

	"github.com/pdiddy/refcat/pkg/types"
)

// ErrNotFound indicates a missing corpus root or an unknown identifier.
var ErrNotFound = errors.New("not found")

// DuplicateError reports an identifier collision during insertion in
// strict mode. In the default mode a collision overwrites the existing
// record and is surfaced as a warning instead.
type DuplicateError struct {
	Identifier string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate identifier %q", e.Identifier)
}

// Catalog is the in-memory record store. Records are immutable once
// inserted; the catalog supports insertion and read-only query only.
// It is not safe for concurrent use.
type Catalog struct {
	records map[string]types.Record
	order   []string
	strict  bool
}

// New returns an empty catalog. With cfg.Strict set, inserting a
// duplicate identifier returns a *DuplicateError instead of overwriting.
func New(cfg types.CatalogConfig) *Catalog {
	return &Catalog{
		records: make(map[string]types.Record),
		strict:  cfg.Strict,
	}
}

// Insert adds a record. replaced reports that an existing record with
// the same identifier was overwritten; callers log it as a data-quality
// warning. In strict mode the collision is returned as a *DuplicateError
// and the existing record is kept.
func (c *Catalog) Insert(rec types.Record) (replaced bool, err error) {
	if rec.Identifier == "" {
		return false, fmt.Errorf("record %q has no identifier", rec.Title)
	}

	if _, exists := c.records[rec.Identifier]; exists {
		if c.strict {
			return false, &DuplicateError{Identifier: rec.Identifier}
		}
		c.records[rec.Identifier] = rec
		return true, nil
	}

	c.records[rec.Identifier] = rec
	c.order = append(c.order, rec.Identifier)
	return false, nil
}

// Get returns the record for identifier, or an error wrapping ErrNotFound.
func (c *Catalog) Get(identifier string) (types.Record, error) {
	rec, ok := c.records[identifier]
	if !ok {
		return types.Record{}, fmt.Errorf("identifier %q: %w", identifier, ErrNotFound)
	}
	return rec, nil
}

// Len returns the number of records held.
func (c *Catalog) Len() int { return len(c.order) }

// Identifiers returns the record identifiers in insertion order.
func (c *Catalog) Identifiers() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Filter returns a lazy sequence of the records matching pred, in
// insertion order.
func (c *Catalog) Filter(pred func(types.Record) bool) iter.Seq[types.Record] {
	return func(yield func(types.Record) bool) {
		for _, id := range c.order {
			rec := c.records[id]
			if !pred(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// All returns a lazy sequence of every record in insertion order.
func (c *Catalog) All() iter.Seq[types.Record] {
	return c.Filter(func(types.Record) bool { return true })
}
