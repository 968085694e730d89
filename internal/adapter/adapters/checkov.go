package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Checkov is an object-with-results-array adapter: top-level object with a
// "results.failed_checks" array and a top-level "check_type" string. Tag
// selection branches on check_type: CI/CD-shaped scans (github_actions,
// gitlab_ci, …) get "cicd-security"+"policy" instead of the default "iac".
type Checkov struct{}

func (Checkov) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "checkov", Version: "1.0.0", ToolName: "Checkov",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no failed checks", 1: "failed checks"},
	}
}

type checkovReport struct {
	CheckType string `json:"check_type"`
	Results   struct {
		FailedChecks []map[string]interface{} `json:"failed_checks"`
	} `json:"results"`
}

var cicdCheckTypes = map[string]bool{
	"github_actions": true,
	"gitlab_ci":       true,
	"circleci_pipelines": true,
	"azure_pipelines": true,
	"bitbucket_pipelines": true,
}

func (Checkov) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report checkovReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results.FailedChecks == nil {
		return nil, nil
	}

	tags := []string{"iac"}
	if cicdCheckTypes[report.CheckType] {
		tags = []string{"cicd-security", "policy"}
	}

	out := make([]finding.Finding, 0, len(report.Results.FailedChecks))
	for _, r := range report.Results.FailedChecks {
		ruleID := adapter.GetString(r, "check_id")
		if ruleID == "" {
			continue
		}
		path := adapter.GetString(r, "file_path", "repo_file_path")
		line := 0
		if rng, ok := r["file_line_range"]; ok {
			line = adapter.FirstInt(rng)
		}
		msg := adapter.GetString(r, "check_name")

		f := finding.New(finding.Tool{Name: "checkov"}, ruleID, finding.SeverityMedium,
			finding.Location{Path: path, StartLine: line}, msg)
		f.Tags = append([]string{}, tags...)
		if guideline := adapter.GetString(r, "guideline"); guideline != "" {
			f.Remediation = &finding.Remediation{Text: guideline}
			f.References = append(f.References, guideline)
		}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}
