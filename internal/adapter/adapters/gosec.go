package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Gosec is an object-with-results-array adapter ("Issues" key) for Go's
// gosec SAST scanner.
type Gosec struct{}

func (Gosec) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "gosec", Version: "1.0.0", ToolName: "gosec",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no issues", 1: "issues found"},
	}
}

type gosecReport struct {
	Issues []map[string]interface{} `json:"Issues"`
}

func (Gosec) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report gosecReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Issues == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Issues))
	for _, r := range report.Issues {
		ruleID := adapter.GetString(r, "rule_id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "file")
		line := adapter.FirstInt(r["line"])
		msg := adapter.GetString(r, "details")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "severity"))

		f := finding.New(finding.Tool{Name: "gosec"}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = []string{"sast", "go"}
		if conf := adapter.GetString(r, "confidence"); conf != "" {
			f.Risk = &finding.Risk{Confidence: conf}
		}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
