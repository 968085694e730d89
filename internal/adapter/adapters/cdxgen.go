package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// CDXGen is an object-with-results-array adapter for CycloneDX SBOMs
// produced by cdxgen: top-level "components" array. Like Syft, every
// component is an informational finding.
type CDXGen struct{}

func (CDXGen) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "cdxgen", Version: "1.0.0", ToolName: "cdxgen",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "sbom generated"},
	}
}

type cdxgenReport struct {
	Components []map[string]interface{} `json:"components"`
}

func (CDXGen) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report cdxgenReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Components == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Components))
	for _, c := range report.Components {
		name := adapter.GetString(c, "name")
		if name == "" {
			continue
		}
		version := adapter.GetString(c, "version")
		purl := adapter.GetString(c, "purl")

		f := finding.New(finding.Tool{Name: "cdxgen"}, name, finding.SeverityInfo,
			finding.Location{Path: purl}, "Package component: "+name+"@"+version)
		f.Tags = []string{"sbom", "dependency"}
		f.Context = map[string]interface{}{
			"packageName":    name,
			"packageVersion": version,
			"purl":           purl,
		}
		f.Raw = toRaw(c)
		out = append(out, f)
	}
	return out, nil
}
