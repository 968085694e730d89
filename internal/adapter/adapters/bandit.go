// Package adapters holds one file per supported scanner, each implementing
// adapter.Adapter. Every file's doc comment names its parsing shape family,
// and most also name their severity-derivation rule, so the mapping from
// tool to code is traceable without a separate index.
package adapters

import (
	"encoding/json"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Bandit is an object-with-results-array adapter (top-level object, "results"
// key) for Python's Bandit SAST scanner. Severity comes from issue_severity
// via the standard token normalizer.
type Bandit struct{}

func (Bandit) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name:          "bandit",
		Version:       "1.0.0",
		ToolName:      "Bandit",
		SchemaVersion: finding.SchemaVersion,
		OutputFormat:  adapter.FormatJSON,
		ExitCodes:     map[int]string{0: "no issues", 1: "issues found"},
	}
}

type banditReport struct {
	Results []map[string]interface{} `json:"results"`
}

func (Bandit) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report banditReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		ruleID := adapter.GetString(r, "test_id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "filename")
		line := adapter.FirstInt(r["line_number"])
		msg := adapter.GetString(r, "issue_text")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "issue_severity"))

		f := finding.New(finding.Tool{Name: "bandit"}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Title = adapter.GetString(r, "test_name")
		f.Tags = []string{"sast", "python"}
		if conf := adapter.GetString(r, "issue_confidence"); conf != "" {
			f.Risk = &finding.Risk{Confidence: conf}
		}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}

// toRaw converts a decoded record back into a generic map for the raw field,
// tolerating marshal failures by returning the record verbatim.
func toRaw(r map[string]interface{}) map[string]interface{} {
	data, err := json.Marshal(r)
	if err != nil {
		return r
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return r
	}
	return raw
}

// ignoreBoundedErr converts a bounded-read error (oversized file) into the
// "treat as empty" contract every adapter must honor for degenerate input.
func ignoreBoundedErr(err error) error {
	if err == adapter.ErrTooLarge {
		return nil
	}
	return err
}
