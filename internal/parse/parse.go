// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse converts raw record-file text into bibliographic Records.
//
// A source file holds one or more records. Each record starts with a
// level-1 title heading, followed by bold-labeled metadata lines
// ("**Label:** value"), an "## Abstract" heading, and free abstract text.
// Records concatenated in one file are separated by a delimiter line of
// three or more hyphens; a new level-1 heading also starts a new record.
// Parsing is a pure transformation with no side effects.
package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/refcat/pkg/types"
)

// SegmentError reports a single malformed segment within a source file.
// It is collected as a warning; sibling segments in the same file still
// parse independently.
type SegmentError struct {
	// Path is the source file.
	Path string

	// Segment is the zero-based ordinal of the failed segment.
	Segment int

	// Reason describes what made the segment unparsable.
	Reason string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s: segment %d: %s", e.Path, e.Segment, e.Reason)
}

// File parses the full text of one source file into zero or more records.
// Malformed segments are returned as SegmentErrors without aborting the
// rest of the file. Blank segments (delimiter runs, trailing whitespace)
// are skipped silently.
func File(path, text string) ([]types.Record, []*SegmentError) {
	var (
		records []types.Record
		errs    []*SegmentError
	)

	for ordinal, segment := range splitSegments(text) {
		if isBlank(segment) {
			continue
		}
		rec, segErr := parseSegment(path, ordinal, segment)
		if segErr != nil {
			errs = append(errs, segErr)
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

// splitSegments divides the file's lines into record segments. A
// delimiter line always closes the current segment; a level-1 heading
// closes it when the segment already holds a title.
func splitSegments(text string) [][]string {
	lines := strings.Split(text, "\n")

	var (
		segments  [][]string
		current   []string
		seenTitle bool
	)
	flush := func() {
		segments = append(segments, current)
		current = nil
		seenTitle = false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if isDelimiter(trimmed) {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			if seenTitle {
				flush()
			}
			seenTitle = true
		}
		current = append(current, line)
	}
	flush()

	return segments
}

// isDelimiter reports whether a trimmed line is a record delimiter:
// three or more hyphens and nothing else.
func isDelimiter(trimmed string) bool {
	return len(trimmed) >= 3 && strings.Trim(trimmed, "-") == ""
}

func isBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// parseSegment extracts one Record from a segment's lines.
func parseSegment(path string, ordinal int, lines []string) (types.Record, *SegmentError) {
	rec := types.Record{SourcePath: path, Segment: ordinal}
	fail := func(reason string) (types.Record, *SegmentError) {
		return types.Record{}, &SegmentError{Path: path, Segment: ordinal, Reason: reason}
	}

	// Title: the first non-blank line must be a level-1 heading.
	i := 0
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "# ") {
			return fail("no title heading before content")
		}
		rec.Title = strings.TrimSpace(trimmed[2:])
		i++
		break
	}
	if rec.Title == "" {
		return fail("missing or empty title")
	}

	// Metadata lines up to the abstract heading. Lines that are neither
	// bold-labeled fields nor the abstract heading are ignored.
	abstractAt := -1
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if isAbstractHeading(trimmed) {
			abstractAt = i + 1
			break
		}
		if label, value, ok := parseLabelLine(trimmed); ok {
			applyField(&rec, label, value)
		}
	}
	if abstractAt < 0 {
		return fail("missing abstract heading")
	}

	// Everything after the heading is the abstract, verbatim. Embedded
	// sub-headings (Background, Methods, Results) stay literal text.
	rec.Abstract = strings.TrimSpace(strings.Join(lines[abstractAt:], "\n"))
	if rec.Abstract == "" {
		return fail("empty abstract")
	}

	rec.Identifier = identifier(rec)
	return rec, nil
}

func isAbstractHeading(trimmed string) bool {
	return strings.HasPrefix(trimmed, "## ") &&
		strings.EqualFold(strings.TrimSpace(trimmed[3:]), "abstract")
}

// parseLabelLine splits "**Label:** value" (or "**Label**: value") into
// its label and value. ok is false for lines in any other shape.
func parseLabelLine(trimmed string) (label, value string, ok bool) {
	if !strings.HasPrefix(trimmed, "**") {
		return "", "", false
	}
	rest := trimmed[2:]
	end := strings.Index(rest, "**")
	if end < 0 {
		return "", "", false
	}

	label = strings.TrimSuffix(strings.TrimSpace(rest[:end]), ":")
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest[end+2:]), ":"))
	if label == "" {
		return "", "", false
	}
	return label, value, true
}

// applyField assigns a labeled value to its Record field. Unknown labels
// and the literal placeholder "None" leave the record unchanged, so a
// missing field never fails a segment.
func applyField(rec *types.Record, label, value string) {
	if value == "" || strings.EqualFold(value, "none") {
		return
	}

	switch strings.ToLower(label) {
	case "authors", "author":
		rec.Authors = splitAuthors(value)
	case "year":
		if year, err := strconv.Atoi(value); err == nil {
			rec.Year = year
		}
	case "journal":
		rec.Journal = value
	case "volume":
		rec.Volume = value
	case "issue":
		rec.Issue = value
	case "pages":
		rec.Pages = value
	case "doi":
		rec.DOI = NormalizeDOI(value)
	}
}

// splitAuthors splits an author list on semicolons when present, so
// "Smith, J.; Doe, A." keeps surname-first names intact, and on commas
// otherwise.
func splitAuthors(value string) []string {
	sep := ","
	if strings.Contains(value, ";") {
		sep = ";"
	}

	var authors []string
	for part := range strings.SplitSeq(value, sep) {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.TrimSpace(doi)
}

// identifier derives the catalog key: the DOI when present, otherwise a
// truncated hash over title, source path, and segment ordinal, stable
// across re-ingests of an unchanged tree.
func identifier(rec types.Record) string {
	if rec.DOI != "" {
		return rec.DOI
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%d", rec.Title, rec.SourcePath, rec.Segment))
	return hex.EncodeToString(sum[:])[:16]
}
