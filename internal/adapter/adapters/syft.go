package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Syft is an object-with-results-array adapter: top-level "artifacts" array,
// one SBOM component per entry. SBOM components are informational by
// definition (§4.3), so every finding is INFO.
type Syft struct{}

func (Syft) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "syft", Version: "1.0.0", ToolName: "Syft",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "sbom generated"},
	}
}

type syftReport struct {
	Artifacts []map[string]interface{} `json:"artifacts"`
}

func (Syft) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report syftReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Artifacts == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		name := adapter.GetString(a, "name")
		if name == "" {
			continue
		}
		version := adapter.GetString(a, "version")
		purl := adapter.GetString(a, "purl")

		path := ""
		if locs, ok := a["locations"].([]interface{}); ok && len(locs) > 0 {
			if loc, ok := locs[0].(map[string]interface{}); ok {
				path = adapter.GetString(loc, "path")
			}
		}

		f := finding.New(finding.Tool{Name: "syft"}, name, finding.SeverityInfo,
			finding.Location{Path: path}, "Package component: "+name+"@"+version)
		f.Tags = []string{"sbom", "dependency"}
		f.Context = map[string]interface{}{
			"packageName":    name,
			"packageVersion": version,
			"purl":           purl,
		}
		f.Raw = toRaw(a)
		out = append(out, f)
	}
	return out, nil
}
