// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refcat/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScanConfig holds settings for the document scanner.
type ScanConfig struct {
	// Extensions lists the file extensions treated as record files
	// (default ".md"). Extensions include the leading dot and are
	// matched case-insensitively.
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// CatalogConfig holds settings for the catalog and its SQLite index.
type CatalogConfig struct {
	// IndexDir is the directory holding the SQLite index (default "index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// Strict makes a duplicate identifier an error instead of an
	// overwrite-with-warning.
	Strict bool `json:"strict" yaml:"strict"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ResolveConfig holds settings for DOI metadata resolution against Crossref.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// MailTo is the contact address sent with Crossref requests for
	// polite-pool access. Loaded from .secrets/crossref-mailto when unset.
	MailTo string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// MaxRetries is the number of retry attempts on rate-limited calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scan    ScanConfig    `json:"scan" yaml:"scan"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
}
