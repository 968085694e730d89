package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// DependencyCheck is an object-with-results-array adapter: top-level
// "dependencies" array, each with a "vulnerabilities" array carrying
// cvssv3/cvssv2 sub-objects. Same v3-over-v2 CVSS preference as OSV/Grype.
type DependencyCheck struct{}

func (DependencyCheck) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "dependency-check", Version: "1.0.0", ToolName: "OWASP Dependency-Check",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no vulnerabilities", 1: "vulnerabilities found"},
	}
}

type depCheckReport struct {
	Dependencies []struct {
		FileName        string                    `json:"fileName"`
		FilePath        string                    `json:"filePath"`
		Vulnerabilities []map[string]interface{} `json:"vulnerabilities"`
	} `json:"dependencies"`
}

func (DependencyCheck) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report depCheckReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Dependencies == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, dep := range report.Dependencies {
		path := dep.FilePath
		if path == "" {
			path = dep.FileName
		}
		for _, v := range dep.Vulnerabilities {
			ruleID := adapter.GetString(v, "name")
			if ruleID == "" {
				continue
			}
			msg := adapter.GetString(v, "description")
			if msg == "" {
				msg = ruleID
			}

			v3, v2 := extractDepCheckCVSS(v)
			cvss, sev := preferCVSS(v3, v2, adapter.GetString(v, "severity"))

			f := finding.New(finding.Tool{Name: "dependency-check"}, ruleID, sev,
				finding.Location{Path: path}, msg)
			f.CVSS = cvss
			f.Tags = []string{"sca", "cve"}
			f.Raw = toRaw(v)
			out = append(out, f)
		}
	}
	return out, nil
}

func extractDepCheckCVSS(v map[string]interface{}) (v3, v2 cvssCandidate) {
	if m, ok := v["cvssv3"].(map[string]interface{}); ok {
		if score, ok := adapter.GetFloat(m, "baseScore"); ok {
			v3 = cvssCandidate{version: "3.x", score: score, vector: adapter.GetString(m, "attackVector"), ok: true}
		}
	}
	if m, ok := v["cvssv2"].(map[string]interface{}); ok {
		if score, ok := adapter.GetFloat(m, "score"); ok {
			v2 = cvssCandidate{version: "2.0", score: score, ok: true}
		}
	}
	return v3, v2
}
