// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan enumerates candidate record files under a corpus root.
package scan

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/pdiddy/refcat/pkg/types"
)

// defaultExtensions is used when ScanConfig.Extensions is empty.
var defaultExtensions = []string{".md"}

// Files returns a lazy sequence of record file paths under root, in
// lexical order. The sequence is restartable: ranging over it again
// re-scans the directory tree.
//
// A missing or unreadable root yields a single error wrapping the
// underlying fs error and ends the sequence. Unreadable files and
// subdirectories below the root are skipped: each yields a non-nil
// error paired with an empty path, and the walk continues, so callers
// can collect them as warnings.
func Files(root string, cfg types.ScanConfig) iter.Seq2[string, error] {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}

	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return fmt.Errorf("scanning root %s: %w", root, err)
				}
				if !yield("", fmt.Errorf("scanning %s: %w", path, err)) {
					return fs.SkipAll
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !matchesExtension(path, exts) {
				return nil
			}
			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// matchesExtension reports whether path ends in one of exts, case-insensitively.
func matchesExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
