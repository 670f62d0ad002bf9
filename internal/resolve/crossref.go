// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve fetches canonical bibliographic metadata for a DOI
// from the Crossref REST API.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/refcat/internal/httputil"
	"github.com/pdiddy/refcat/internal/parse"
	"github.com/pdiddy/refcat/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

// ErrDOINotFound indicates Crossref has no work registered for the DOI.
var ErrDOINotFound = errors.New("DOI not registered with Crossref")

// crossrefResponse captures the fields we need from a Crossref work record.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string            `json:"DOI"`
	Title          []string          `json:"title"`
	ContainerTitle []string          `json:"container-title"`
	Volume         string            `json:"volume"`
	Issue          string            `json:"issue"`
	Page           string            `json:"page"`
	Author         []crossrefAuthor  `json:"author"`
	Issued         crossrefDateParts `json:"issued"`
	Abstract       string            `json:"abstract"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Crossref queries the Crossref works API for a DOI and returns the
// canonical metadata as a Record. Requests carry the configured
// User-Agent and, when cfg.MailTo is set, a mailto parameter for
// Crossref's polite pool. Rate-limited calls are retried with backoff.
func Crossref(ctx context.Context, client *http.Client, doi string, cfg types.ResolveConfig) (types.Record, error) {
	doi = parse.NormalizeDOI(doi)
	if doi == "" {
		return types.Record{}, fmt.Errorf("empty DOI")
	}

	apiURL := crossrefAPIBase + url.PathEscape(doi)
	if cfg.MailTo != "" {
		apiURL += "?mailto=" + url.QueryEscape(cfg.MailTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return types.Record{}, fmt.Errorf("creating Crossref request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return types.Record{}, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return types.Record{}, fmt.Errorf("DOI %s: %w", doi, ErrDOINotFound)
	case resp.StatusCode != http.StatusOK:
		return types.Record{}, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.Record{}, fmt.Errorf("parsing Crossref response: %w", err)
	}

	return recordFromWork(cr.Message), nil
}

func recordFromWork(work crossrefWork) types.Record {
	rec := types.Record{
		DOI:    parse.NormalizeDOI(work.DOI),
		Volume: work.Volume,
		Issue:  work.Issue,
		Pages:  work.Page,
	}
	rec.Identifier = rec.DOI

	if len(work.Title) > 0 {
		rec.Title = strings.TrimSpace(work.Title[0])
	}
	if len(work.ContainerTitle) > 0 {
		rec.Journal = strings.TrimSpace(work.ContainerTitle[0])
	}

	for _, a := range work.Author {
		rec.Authors = append(rec.Authors, formatAuthor(a))
	}

	if parts := work.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		rec.Year = parts[0][0]
	}

	rec.Abstract = stripJATS(work.Abstract)
	return rec
}

// formatAuthor renders an author surname-first, matching the corpus
// convention ("Smith, J.").
func formatAuthor(a crossrefAuthor) string {
	switch {
	case a.Family != "" && a.Given != "":
		return a.Family + ", " + a.Given
	case a.Family != "":
		return a.Family
	default:
		return a.Name
	}
}

// stripJATS removes JATS XML markup from a Crossref abstract, leaving
// the plain text.
func stripJATS(abstract string) string {
	var (
		b     strings.Builder
		inTag bool
	)
	for _, r := range abstract {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
