package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// document is one on-disk file read into memory. The filename is the
// document identifier.
type document struct {
	id   string
	text string
}

// listDocuments reads every matching file in dir in lexicographic order.
// Subdirectories are not scanned. A missing directory is an error; an empty
// one is not.
func listDocuments(dir string, include []string) ([]document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("missing tenant directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tenant path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tenant directory %s: %w", dir, err)
	}

	var docs []document
	for _, entry := range entries {
		if entry.IsDir() || !matchesAny(include, entry.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", entry.Name(), err)
		}
		docs = append(docs, document{id: entry.Name(), text: string(raw)})
	}
	return docs, nil
}

// matchesAny reports whether the lowercased filename matches any of the
// include patterns.
func matchesAny(patterns []string, name string) bool {
	name = strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
