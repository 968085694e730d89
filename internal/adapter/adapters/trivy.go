package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Trivy is an object-with-results-array adapter: top-level "Results" array,
// each with a "Vulnerabilities" array. Trivy already reports severity in the
// canonical vocabulary, so it passes straight through NormalizeSeverity.
type Trivy struct{}

func (Trivy) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "trivy", Version: "1.0.0", ToolName: "Trivy",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no vulnerabilities", 1: "vulnerabilities found"},
	}
}

type trivyReport struct {
	Results []struct {
		Target          string                    `json:"Target"`
		Vulnerabilities []map[string]interface{} `json:"Vulnerabilities"`
	} `json:"Results"`
}

func (Trivy) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report trivyReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Results == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, res := range report.Results {
		for _, v := range res.Vulnerabilities {
			ruleID := adapter.GetString(v, "VulnerabilityID")
			if ruleID == "" {
				continue
			}
			msg := adapter.GetString(v, "Title", "Description")
			if msg == "" {
				msg = ruleID
			}
			sev := finding.NormalizeSeverity(adapter.GetString(v, "Severity"))
			pkgName := adapter.GetString(v, "PkgName")
			pkgVersion := adapter.GetString(v, "InstalledVersion")

			f := finding.New(finding.Tool{Name: "trivy"}, ruleID, sev,
				finding.Location{Path: res.Target}, msg)
			f.Tags = []string{"sca", "cve"}
			f.Context = map[string]interface{}{
				"packageName":    pkgName,
				"packageVersion": pkgVersion,
			}
			if url := adapter.GetString(v, "PrimaryURL"); url != "" {
				f.References = []string{url}
			}
			f.Raw = toRaw(v)
			out = append(out, f)
		}
	}
	return out, nil
}
