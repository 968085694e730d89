package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Terrascan is an object-with-results-array adapter: top-level
// "results.violations" array of IaC policy violations.
type Terrascan struct{}

func (Terrascan) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "terrascan", Version: "1.0.0", ToolName: "Terrascan",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no violations", 3: "violations found"},
	}
}

type terrascanReport struct {
	Results struct {
		Violations []map[string]interface{} `json:"violations"`
	} `json:"results"`
}

func (Terrascan) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report terrascanReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results.Violations == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Results.Violations))
	for _, r := range report.Results.Violations {
		ruleID := adapter.GetString(r, "rule_id", "rule_name")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "file")
		line := adapter.FirstInt(r["line"])
		msg := adapter.GetString(r, "description")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "severity"))

		f := finding.New(finding.Tool{Name: "terrascan"}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = []string{"iac"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
