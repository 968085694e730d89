package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Hadolint is the canonical array-of-issues adapter: a bare top-level JSON
// array, one object per Dockerfile lint issue. Severity is the ERROR/
// WARNING/INFO token mapping shared with Semgrep.
type Hadolint struct{}

func (Hadolint) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "hadolint", Version: "1.0.0", ToolName: "Hadolint",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no issues", 1: "issues found"},
	}
}

func (Hadolint) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []map[string]interface{}
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &records); err != nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(records))
	for _, r := range records {
		ruleID := adapter.GetString(r, "code")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "file")
		line := adapter.FirstInt(r["line"])
		msg := adapter.GetString(r, "message")
		sev := errorWarningInfoSeverity(adapter.GetString(r, "level"))

		f := finding.New(finding.Tool{Name: "hadolint"}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = []string{"iac", "dockerfile"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
