package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Gitleaks is an array-of-issues adapter: the report is a bare top-level
// JSON array, one object per detected secret. Gitleaks does not emit a
// severity field, so every finding defaults to HIGH (a confirmed secret
// match, unlike Trufflehog's probabilistic detectors).
type Gitleaks struct{}

func (Gitleaks) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "gitleaks", Version: "1.0.0", ToolName: "Gitleaks",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no leaks", 1: "leaks found"},
	}
}

func (Gitleaks) Parse(path string) ([]finding.Finding, error) {
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
		ruleID := adapter.GetString(r, "RuleID", "rule_id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "File", "file")
		line := adapter.FirstInt(r["StartLine"])
		msg := adapter.GetString(r, "Description", "description")
		if msg == "" {
			msg = "Potential secret detected: " + ruleID
		}

		f := finding.New(finding.Tool{Name: "gitleaks"}, ruleID, finding.SeverityHigh,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = []string{"secret", "hardcoded-secret"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
