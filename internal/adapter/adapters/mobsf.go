package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// MobSF is an object-with-results-array adapter: top-level "findings" array
// of mobile static-analysis issues.
type MobSF struct{}

func (MobSF) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "mobsf", Version: "1.0.0", ToolName: "Mobile Security Framework",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "analysis complete"},
	}
}

type mobsfReport struct {
	Findings []map[string]interface{} `json:"findings"`
}

func (MobSF) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report mobsfReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Findings == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Findings))
	for _, r := range report.Findings {
		ruleID := adapter.GetString(r, "rule_id", "id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "file", "file_path")
		msg := adapter.GetString(r, "title", "description")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "severity"))

		f := finding.New(finding.Tool{Name: "mobsf"}, ruleID, sev,
			finding.Location{Path: path}, msg)
		f.Tags = []string{"mobile-security"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
