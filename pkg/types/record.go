// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the refcat pipeline:
// the bibliographic Record produced by parsing, and the configuration
// structs consumed by the scan, catalog, and resolve stages.
package types

// Record is one parsed bibliographic entry: the metadata fields and the
// abstract of a single published paper. Records are immutable once parsed;
// the catalog only inserts and reads them.
type Record struct {
	// Identifier uniquely keys the record within a catalog. It is the
	// lowercased DOI when one is present, otherwise a hash derived from
	// the title, source path, and segment ordinal.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title from the level-1 heading. Never empty.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order. May be empty when
	// the source file does not list them.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year. Zero means the source listed no year.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the publication venue as written in the source.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Volume is the journal volume.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`

	// Issue is the journal issue.
	Issue string `json:"issue,omitempty" yaml:"issue,omitempty"`

	// Pages is the page range (e.g. "e245-e253").
	Pages string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI is the digital object identifier, lowercased, without a
	// resolver prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the free text following the "## Abstract" heading,
	// verbatim. Embedded sub-headings (Background, Methods, Results)
	// remain literal text. Never empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// SourcePath is the file the record was parsed from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// Segment is the zero-based ordinal of the record within its source
	// file. Files may concatenate several records separated by a
	// delimiter line.
	Segment int `json:"segment" yaml:"segment"`
}

// HasDOI reports whether the record carries a DOI of its own, as opposed
// to a derived fallback identifier.
func (r Record) HasDOI() bool { return r.DOI != "" }
