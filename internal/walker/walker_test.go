package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

type stubAdapter struct {
	name   string
	format adapter.OutputFormat
}

func (s stubAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{Name: s.name, OutputFormat: s.format, SchemaVersion: finding.SchemaVersion}
}

func (s stubAdapter) Parse(path string) ([]finding.Finding, error) { return nil, nil }

func TestWalkRecognizedFiles(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "individual-repos", "r1")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "bandit.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "prowler.ndjson"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "unknown-tool.xml"), []byte("<x/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := adapter.NewRegistry(nil)
	reg.Register(stubAdapter{name: "bandit", format: adapter.FormatJSON})
	reg.Register(stubAdapter{name: "prowler", format: adapter.FormatNDJSON})

	units, err := Walk(root, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 work units, got %d: %+v", len(units), units)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	reg := adapter.NewRegistry(nil)
	units, err := Walk(filepath.Join(t.TempDir(), "nope"), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units != nil {
		t.Fatalf("expected nil units for missing root")
	}
}
