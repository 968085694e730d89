package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// OSV is an object-with-results-array adapter for osv-scanner's nested
// shape: results[].packages[].vulnerabilities[]. Severity prefers a CVSS v3
// base score over v2, falling back to MEDIUM when osv-scanner reports only
// a CVSS vector string with no numeric score (vector-to-score derivation is
// out of scope; osv-scanner usually emits a bare numeric score alongside the
// vector, which is what this adapter reads).
type OSV struct{}

func (OSV) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "osv", Version: "1.0.0", ToolName: "OSV-Scanner",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no vulnerabilities", 1: "vulnerabilities found"},
	}
}

type osvReport struct {
	Results []struct {
		Source struct {
			Path string `json:"path"`
		} `json:"source"`
		Packages []struct {
			Package struct {
				Name      string `json:"name"`
				Version   string `json:"version"`
				Ecosystem string `json:"ecosystem"`
			} `json:"package"`
			Vulnerabilities []map[string]interface{} `json:"vulnerabilities"`
		} `json:"packages"`
	} `json:"results"`
}

func (OSV) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report osvReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, res := range report.Results {
		for _, pkg := range res.Packages {
			for _, v := range pkg.Vulnerabilities {
				ruleID := adapter.GetString(v, "id")
				if ruleID == "" {
					continue
				}
				msg := adapter.GetString(v, "summary", "details")
				if msg == "" {
					msg = ruleID
				}

				v3, v2 := extractOSVSeverities(v)
				cvss, sev := preferCVSS(v3, v2, "")

				f := finding.New(finding.Tool{Name: "osv"}, ruleID, sev,
					finding.Location{Path: res.Source.Path}, msg)
				f.CVSS = cvss
				f.Tags = []string{"sca", "cve", ecosystemTag(pkg.Package.Ecosystem)}
				f.Context = map[string]interface{}{
					"packageName":    pkg.Package.Name,
					"packageVersion": pkg.Package.Version,
				}
				f.Raw = toRaw(v)
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func extractOSVSeverities(v map[string]interface{}) (v3, v2 cvssCandidate) {
	severities, _ := v["severity"].([]interface{})
	for _, s := range severities {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		typ := adapter.GetString(m, "type")
		score, ok := adapter.GetFloat(m, "score")
		if !ok {
			continue
		}
		vector := adapter.GetString(m, "score")
		switch typ {
		case "CVSS_V3":
			v3 = cvssCandidate{version: "3.x", score: score, vector: vector, ok: true}
		case "CVSS_V2":
			v2 = cvssCandidate{version: "2.0", score: score, vector: vector, ok: true}
		}
	}
	return v3, v2
}

// ecosystemTag maps an OSV/package ecosystem name to the lowercase tag
// vocabulary used across adapters.
func ecosystemTag(ecosystem string) string {
	switch ecosystem {
	case "npm":
		return "npm"
	case "PyPI":
		return "pypi"
	case "Maven":
		return "maven"
	case "Go":
		return "go"
	case "RubyGems":
		return "ruby"
	case "NuGet":
		return "nuget"
	case "Packagist":
		return "php"
	case "Debian":
		return "deb"
	case "Alpine":
		return "apk"
	default:
		return "dependency"
	}
}
