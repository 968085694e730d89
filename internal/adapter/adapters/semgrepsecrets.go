package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// SemgrepSecrets shares Semgrep's object-with-results-array shape but is
// registered under a distinct name because its secret-class findings default
// to CRITICAL on an ERROR token rather than Semgrep's general HIGH mapping.
type SemgrepSecrets struct{}

func (SemgrepSecrets) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "semgrep-secrets", Version: "1.0.0", ToolName: "Semgrep Secrets",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no findings", 1: "findings", 2: "error"},
	}
}

func (SemgrepSecrets) Parse(path string) ([]finding.Finding, error) {
	return parseSemgrepLike(path, "semgrep-secrets", true)
}
