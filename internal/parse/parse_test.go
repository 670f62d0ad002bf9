// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"testing"
)

const sampleTwoRecords = `# Mobile Health Interventions for Smoking Cessation
**Authors:** Smith, J.; Doe, A.
**Year:** 2019
**Journal:** Journal of Medical Internet Research
**Volume:** 21
**Issue:** 4
**Pages:** e12345
**DOI:** 10.2196/12345

## Abstract
Background: Smoking remains a leading cause of preventable death.
Methods: We randomized 500 participants to an app-based intervention.
Results: Quit rates improved at 6 months.
Conclusions: mHealth support is effective.

---

# Cost-Effectiveness of Digital Diabetes Prevention
**Authors:** Lee, K.
**Year:** 2021
**Journal:** Diabetes Care
**DOI:** 10.2337/dc21-0880

## Abstract
We modeled the incremental cost per QALY of a digital diabetes
prevention program against usual care.
`

func TestFileScenario(t *testing.T) {
	// The minimal well-formed record.
	text := "# Title\n**Authors:** A, B\n**Year:** 2020\n## Abstract\nSome text."

	records, errs := File("corpus/minimal.md", text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Title != "Title" {
		t.Errorf("title = %q, want %q", rec.Title, "Title")
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "A" || rec.Authors[1] != "B" {
		t.Errorf("authors = %v, want [A B]", rec.Authors)
	}
	if rec.Year != 2020 {
		t.Errorf("year = %d, want 2020", rec.Year)
	}
	if rec.Abstract != "Some text." {
		t.Errorf("abstract = %q, want %q", rec.Abstract, "Some text.")
	}
	if rec.Identifier == "" {
		t.Error("identifier is empty")
	}
}

func TestFileTwoDelimitedRecords(t *testing.T) {
	records, errs := File("corpus/two.md", sampleTwoRecords)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if records[0].DOI != "10.2196/12345" {
		t.Errorf("first DOI = %q", records[0].DOI)
	}
	if records[1].DOI != "10.2337/dc21-0880" {
		t.Errorf("second DOI = %q", records[1].DOI)
	}
	// DOI-bearing records are keyed by their DOI.
	if records[0].Identifier != records[0].DOI {
		t.Errorf("identifier = %q, want DOI %q", records[0].Identifier, records[0].DOI)
	}
	if records[0].Identifier == records[1].Identifier {
		t.Error("records share an identifier")
	}

	if records[0].Journal != "Journal of Medical Internet Research" {
		t.Errorf("journal = %q", records[0].Journal)
	}
	if records[0].Volume != "21" || records[0].Issue != "4" || records[0].Pages != "e12345" {
		t.Errorf("volume/issue/pages = %q/%q/%q", records[0].Volume, records[0].Issue, records[0].Pages)
	}
	if got := records[0].Authors; len(got) != 2 || got[0] != "Smith, J." || got[1] != "Doe, A." {
		t.Errorf("semicolon authors = %v", got)
	}
}

func TestFileAbstractPreservesSubheadings(t *testing.T) {
	records, errs := File("corpus/two.md", sampleTwoRecords)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	abstract := records[0].Abstract
	for _, heading := range []string{"Background:", "Methods:", "Results:", "Conclusions:"} {
		if !strings.Contains(abstract, heading) {
			t.Errorf("abstract lost embedded sub-heading %q", heading)
		}
	}
}

func TestFileLevel1HeadingStartsNewRecord(t *testing.T) {
	// Two records concatenated without a delimiter line.
	text := "# First\n**DOI:** 10.1/a\n## Abstract\nOne.\n# Second\n**DOI:** 10.1/b\n## Abstract\nTwo."

	records, errs := File("corpus/headings.md", text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Abstract != "One." || records[1].Abstract != "Two." {
		t.Errorf("abstracts = %q, %q", records[0].Abstract, records[1].Abstract)
	}
}

func TestFileMissingYear(t *testing.T) {
	text := "# No Year Here\n**Authors:** A\n## Abstract\nText."

	records, errs := File("corpus/noyear.md", text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Year != 0 {
		t.Errorf("year = %d, want 0 (unlisted)", records[0].Year)
	}
}

func TestFileNonePlaceholders(t *testing.T) {
	text := "# Placeholders\n**Year:** None\n**Volume:** None\n**DOI:** None\n## Abstract\nText."

	records, errs := File("corpus/none.md", text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	rec := records[0]
	if rec.Year != 0 || rec.Volume != "" || rec.DOI != "" {
		t.Errorf("placeholder fields not cleared: year=%d volume=%q doi=%q", rec.Year, rec.Volume, rec.DOI)
	}
	// Without a DOI the identifier falls back to the derived hash.
	if rec.Identifier == "" || len(rec.Identifier) != 16 {
		t.Errorf("fallback identifier = %q, want 16 hex chars", rec.Identifier)
	}
}

func TestFileMissingTitleFailsOnlyThatSegment(t *testing.T) {
	text := "**Authors:** A\n## Abstract\nOrphan text.\n\n---\n\n# Valid Sibling\n## Abstract\nFine."

	records, errs := File("corpus/mixed.md", text)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Reason, "title") {
		t.Errorf("error reason = %q, want title failure", errs[0].Reason)
	}
	if len(records) != 1 || records[0].Title != "Valid Sibling" {
		t.Fatalf("sibling segment did not parse: %v", records)
	}
}

func TestFileMissingAbstractFails(t *testing.T) {
	text := "# Title Only\n**Year:** 2020\n"

	records, errs := File("corpus/noabs.md", text)
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Reason, "abstract") {
		t.Fatalf("errors = %v, want one abstract failure", errs)
	}
}

func TestFileBlankAndDelimiterOnly(t *testing.T) {
	for _, text := range []string{"", "\n\n\n", "---\n---\n", "   \n---\n   "} {
		records, errs := File("corpus/blank.md", text)
		if len(records) != 0 || len(errs) != 0 {
			t.Errorf("File(%q) = %d records, %d errors; want 0, 0", text, len(records), len(errs))
		}
	}
}

func TestFileSegmentCountMatchesParsableSegments(t *testing.T) {
	records, errs := File("corpus/two.md", sampleTwoRecords)
	// Two delimiter-separated segments carry a title and abstract; both parse.
	if len(records) != 2 || len(errs) != 0 {
		t.Fatalf("records=%d errs=%d, want 2 and 0", len(records), len(errs))
	}
}

func TestIdentifierStableAcrossReparse(t *testing.T) {
	text := "# Stable\n## Abstract\nText."

	first, _ := File("corpus/stable.md", text)
	second, _ := File("corpus/stable.md", text)
	if first[0].Identifier != second[0].Identifier {
		t.Errorf("identifiers differ across reparses: %q vs %q", first[0].Identifier, second[0].Identifier)
	}

	other, _ := File("corpus/other.md", text)
	if first[0].Identifier == other[0].Identifier {
		t.Error("identifier ignores source path")
	}
}

func TestParseLabelLine(t *testing.T) {
	tests := []struct {
		line      string
		wantLabel string
		wantValue string
		wantOK    bool
	}{
		{"**Year:** 2020", "Year", "2020", true},
		{"**Year**: 2020", "Year", "2020", true},
		{"**DOI:** 10.2196/12345", "DOI", "10.2196/12345", true},
		{"**Authors:**", "Authors", "", true},
		{"Year: 2020", "", "", false},
		{"**unterminated", "", "", false},
		{"plain text with **bold** inside", "", "", false},
	}

	for _, tt := range tests {
		label, value, ok := parseLabelLine(tt.line)
		if ok != tt.wantOK || label != tt.wantLabel || value != tt.wantValue {
			t.Errorf("parseLabelLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, label, value, ok, tt.wantLabel, tt.wantValue, tt.wantOK)
		}
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.2196/12345", "10.2196/12345"},
		{"10.2196/JMIR.12345", "10.2196/jmir.12345"},
		{"https://doi.org/10.2196/12345", "10.2196/12345"},
		{"doi:10.2196/12345", "10.2196/12345"},
		{"  10.2196/12345  ", "10.2196/12345"},
	}

	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A, B", []string{"A", "B"}},
		{"Smith, J.; Doe, A.", []string{"Smith, J.", "Doe, A."}},
		{"Single Author", []string{"Single Author"}},
		{" A , , B ", []string{"A", "B"}},
	}

	for _, tt := range tests {
		got := splitAuthors(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitAuthors(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitAuthors(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestUnparsableYearIsUnset(t *testing.T) {
	text := "# Odd Year\n**Year:** circa 2020\n## Abstract\nText."

	records, errs := File("corpus/odd.md", text)
	if len(errs) != 0 || len(records) != 1 {
		t.Fatalf("records=%d errs=%v", len(records), errs)
	}
	if records[0].Year != 0 {
		t.Errorf("year = %d, want 0 for unparsable value", records[0].Year)
	}
}
