package adapter

import (
	"os"
	"testing"

	"github.com/lvonguyen/secfindings/internal/finding"
)

type stubAdapter struct {
	name string
}

func (s stubAdapter) Metadata() Metadata {
	return Metadata{Name: s.name, ToolName: s.name, SchemaVersion: finding.SchemaVersion, OutputFormat: FormatJSON}
}

func (s stubAdapter) Parse(path string) ([]finding.Finding, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(stubAdapter{name: "bandit"})

	a, ok := r.Get("bandit")
	if !ok {
		t.Fatalf("expected bandit to be registered")
	}
	if a.Metadata().Name != "bandit" {
		t.Fatalf("unexpected metadata: %+v", a.Metadata())
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatalf("did not expect nonexistent adapter")
	}
}

func TestRegistryLastWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(stubAdapter{name: "bandit"})
	r.Register(stubAdapter{name: "bandit"})
	if r.Len() != 1 {
		t.Fatalf("expected one entry after duplicate registration, got %d", r.Len())
	}
}

func TestRegistryReload(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(stubAdapter{name: "bandit"})

	if err := r.Reload("bandit", stubAdapter{name: "bandit"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Reload("bandit", stubAdapter{name: "other"}); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := r.Reload("bandit", nil); err == nil {
		t.Fatalf("expected nil-replacement error")
	}
}

func TestDefaultValidateMissingFileFails(t *testing.T) {
	if DefaultValidate(stubAdapter{name: "bandit"}, "/nonexistent/path.json") {
		t.Fatalf("expected DefaultValidate to fail for a missing file")
	}
}

func TestDefaultValidateExistingFilePasses(t *testing.T) {
	path := t.TempDir() + "/bandit.json"
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !DefaultValidate(stubAdapter{name: "bandit"}, path) {
		t.Fatalf("expected DefaultValidate to pass for an existing file parse does not error on")
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(stubAdapter{name: "bandit"})
	r.Register(stubAdapter{name: "semgrep"})
	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}
}
