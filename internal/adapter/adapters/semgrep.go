package adapters

import (
	"strings"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Semgrep is an object-with-results-array adapter ("results" key). Severity
// comes from extra.severity via the ERROR/WARNING/INFO token mapping.
type Semgrep struct{}

func (Semgrep) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "semgrep", Version: "1.0.0", ToolName: "Semgrep",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no findings", 1: "findings", 2: "error"},
	}
}

type semgrepReport struct {
	Results []map[string]interface{} `json:"results"`
}

func (Semgrep) Parse(path string) ([]finding.Finding, error) {
	return parseSemgrepLike(path, "semgrep", false)
}

// parseSemgrepLike is shared by Semgrep and SemgrepSecrets: same report
// shape, different tool name and secret-default severity behavior.
func parseSemgrepLike(path, toolName string, secretDefaultCritical bool) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report semgrepReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		ruleID := adapter.GetString(r, "check_id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "path")
		line := 0
		if start, ok := r["start"].(map[string]interface{}); ok {
			line = adapter.FirstInt(start["line"])
		}
		extra, _ := r["extra"].(map[string]interface{})
		msg := ""
		token := ""
		var refs []string
		var cwe []string
		var owasp []string
		if extra != nil {
			msg = adapter.GetString(extra, "message")
			token = adapter.GetString(extra, "severity")
			if meta, ok := extra["metadata"].(map[string]interface{}); ok {
				refs = adapter.GetStringSlice(meta, "references")
				cwe = adapter.GetStringSlice(meta, "cwe")
				owasp = adapter.GetStringSlice(meta, "owasp")
			}
		}

		sev := errorWarningInfoSeverity(token)
		if secretDefaultCritical && strings.ToUpper(strings.TrimSpace(token)) == "ERROR" {
			sev = finding.SeverityCritical
		}

		f := finding.New(finding.Tool{Name: toolName}, ruleID, sev,
			finding.Location{Path: path, StartLine: line}, msg)
		if secretDefaultCritical {
			f.Tags = []string{"secret"}
		} else {
			f.Tags = []string{"sast"}
		}
		f.References = refs
		if len(cwe) > 0 || len(owasp) > 0 {
			f.Risk = &finding.Risk{CWE: cwe, OWASP: owasp}
		}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
