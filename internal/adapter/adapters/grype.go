package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Grype is an object-with-results-array adapter ("matches" key). Severity
// prefers CVSS v3 over v2, falling back to the vulnerability's own
// "severity" string, per the shared CVSS-scored-tool rule.
type Grype struct{}

func (Grype) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "grype", Version: "1.0.0", ToolName: "Grype",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no vulnerabilities", 1: "vulnerabilities found"},
	}
}

type grypeReport struct {
	Matches []map[string]interface{} `json:"matches"`
}

func (Grype) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report grypeReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Matches == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Matches))
	for _, m := range report.Matches {
		vuln, _ := m["vulnerability"].(map[string]interface{})
		if vuln == nil {
			continue
		}
		ruleID := adapter.GetString(vuln, "id")
		if ruleID == "" {
			continue
		}

		artifact, _ := m["artifact"].(map[string]interface{})
		pkgName := ""
		pkgVersion := ""
		purl := ""
		if artifact != nil {
			pkgName = adapter.GetString(artifact, "name")
			pkgVersion = adapter.GetString(artifact, "version")
			purl = adapter.GetString(artifact, "purl")
		}

		v3, v2 := extractGrypeCVSS(vuln)
		cvss, sev := preferCVSS(v3, v2, adapter.GetString(vuln, "severity"))

		msg := ruleID
		if pkgName != "" {
			msg = ruleID + " in " + pkgName
		}

		f := finding.New(finding.Tool{Name: "grype"}, ruleID, sev,
			finding.Location{Path: pkgName}, msg)
		f.CVSS = cvss
		f.Tags = []string{"sca", "cve"}
		f.Context = map[string]interface{}{
			"packageName":    pkgName,
			"packageVersion": pkgVersion,
			"purl":           purl,
		}
		f.Raw = toRaw(m)
		out = append(out, f)
	}
	return out, nil
}

func extractGrypeCVSS(vuln map[string]interface{}) (v3, v2 cvssCandidate) {
	entries, _ := vuln["cvss"].([]interface{})
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		version := adapter.GetString(m, "version")
		metrics, _ := m["metrics"].(map[string]interface{})
		if metrics == nil {
			continue
		}
		score, ok := adapter.GetFloat(metrics, "baseScore")
		if !ok {
			continue
		}
		vector := adapter.GetString(m, "vector")
		switch {
		case len(version) > 0 && version[0] == '3':
			v3 = cvssCandidate{version: "3.x", score: score, vector: vector, ok: true}
		case len(version) > 0 && version[0] == '2':
			v2 = cvssCandidate{version: "2.0", score: score, vector: vector, ok: true}
		}
	}
	return v3, v2
}
