package adapters

import (
	"strings"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// ZAP is an object-with-results-array adapter for OWASP ZAP's DAST report:
// top-level "site" array, each with an "alerts" array. Severity comes from
// the leading word of "riskdesc" (e.g. "High (Medium)" -> HIGH).
type ZAP struct{}

func (ZAP) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "zap", Version: "1.0.0", ToolName: "OWASP ZAP",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "scan complete"},
	}
}

type zapReport struct {
	Site []struct {
		Alerts []map[string]interface{} `json:"alerts"`
	} `json:"site"`
}

func (ZAP) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report zapReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Site == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, site := range report.Site {
		for _, a := range site.Alerts {
			ruleID := adapter.GetString(a, "pluginid")
			if ruleID == "" {
				continue
			}
			msg := adapter.GetString(a, "name")
			sev := finding.NormalizeSeverity(firstWord(adapter.GetString(a, "riskdesc")))

			path := ""
			if instances, ok := a["instances"].([]interface{}); ok && len(instances) > 0 {
				if inst, ok := instances[0].(map[string]interface{}); ok {
					path = adapter.GetString(inst, "uri")
				}
			}

			f := finding.New(finding.Tool{Name: "zap"}, ruleID, sev,
				finding.Location{Path: path}, msg)
			f.Tags = []string{"dast"}
			if cwe := adapter.GetString(a, "cweid"); cwe != "" && cwe != "0" {
				f.Risk = &finding.Risk{CWE: []string{"CWE-" + cwe}}
			}
			f.Raw = toRaw(a)
			out = append(out, f)
		}
	}
	return out, nil
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		return s[:i]
	}
	return s
}
