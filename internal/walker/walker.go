// Package walker enumerates a results tree and yields the (adapter name,
// file path) pairs the aggregation pipeline dispatches to the registry.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lvonguyen/secfindings/internal/adapter"
)

// WorkUnit is one (adapter, file) pair discovered under a target directory.
type WorkUnit struct {
	Target      string
	AdapterName string
	Path        string
}

// Walk enumerates <root>/individual-repos/<target>/<tool>.<ext> and returns
// one WorkUnit per recognized tool output file. A file name matches a
// registered adapter when its base name (without extension) equals an
// adapter name and its extension is a recognized output format ("json" or
// "ndjson"); the adapter's own declared OutputFormat is informational only
// (an adapter may be asked to parse either extension, since several tools'
// actual output convention doesn't match their nominal format -- e.g.
// Trufflehog is tolerant of both plain JSON and NDJSON, see its Parse).
// Unknown files are ignored, never an error.
func Walk(root string, reg *adapter.Registry) ([]WorkUnit, error) {
	reposDir := filepath.Join(root, "individual-repos")

	entries, err := os.ReadDir(reposDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var units []WorkUnit
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		target := entry.Name()
		targetDir := filepath.Join(reposDir, target)

		files, err := os.ReadDir(targetDir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			name, ext := splitExt(f.Name())
			if ext != string(adapter.FormatJSON) && ext != string(adapter.FormatNDJSON) {
				continue
			}
			if _, ok := reg.Get(name); !ok {
				continue
			}
			units = append(units, WorkUnit{
				Target:      target,
				AdapterName: name,
				Path:        filepath.Join(targetDir, f.Name()),
			})
		}
	}
	return units, nil
}

func splitExt(name string) (base, ext string) {
	e := filepath.Ext(name)
	if e == "" {
		return name, ""
	}
	return strings.TrimSuffix(name, e), strings.TrimPrefix(e, ".")
}
