package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// TrivyRBAC is an object-with-results-array adapter ("results" key) for
// Trivy's Kubernetes RBAC misconfiguration scan. RBAC checks have no source
// file, so they use the synthetic "rbac-check:<id>" path called out in the
// data model's location invariant.
type TrivyRBAC struct{}

func (TrivyRBAC) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "trivy-rbac", Version: "1.0.0", ToolName: "Trivy RBAC Assessment",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no issues", 1: "issues found"},
	}
}

type trivyRBACReport struct {
	Results []map[string]interface{} `json:"results"`
}

func (TrivyRBAC) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report trivyRBACReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		ruleID := adapter.GetString(r, "ID", "id")
		if ruleID == "" {
			continue
		}
		msg := adapter.GetString(r, "Message", "message")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "Severity", "severity"))

		f := finding.New(finding.Tool{Name: "trivy-rbac"}, ruleID, sev,
			finding.Location{Path: "rbac-check:" + ruleID}, msg)
		f.Tags = []string{"k8s-security"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
