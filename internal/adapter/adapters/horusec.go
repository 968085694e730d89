package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Horusec is an object-with-results-array adapter ("analysisVulnerabilities"
// key), a multi-language SAST aggregator.
type Horusec struct{}

func (Horusec) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "horusec", Version: "1.0.0", ToolName: "Horusec",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no vulnerabilities", 1: "vulnerabilities found"},
	}
}

type horusecReport struct {
	AnalysisVulnerabilities []struct {
		Vulnerabilities map[string]interface{} `json:"vulnerabilities"`
	} `json:"analysisVulnerabilities"`
}

func (Horusec) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report horusecReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.AnalysisVulnerabilities == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, entry := range report.AnalysisVulnerabilities {
		v := entry.Vulnerabilities
		if v == nil {
			continue
		}
		ruleID := adapter.GetString(v, "rule_id", "RuleID")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(v, "file", "File")
		line := adapter.FirstInt(v["line"])
		if line == 0 {
			line = adapter.FirstInt(v["Line"])
		}
		msg := adapter.GetString(v, "details", "Details")
		sev := finding.NormalizeSeverity(adapter.GetString(v, "severity", "Severity"))

		f := finding.New(finding.Tool{Name: "horusec"}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = []string{"sast"}
		f.Raw = toRaw(v)
		out = append(out, f)
	}
	return out, nil
}
