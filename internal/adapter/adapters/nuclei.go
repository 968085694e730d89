package adapters

import (
	"encoding/json"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Nuclei is an NDJSON-stream adapter: one template match per line. Severity
// and rule id live under the nested "info" object.
type Nuclei struct{}

func (Nuclei) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "nuclei", Version: "1.0.0", ToolName: "Nuclei",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatNDJSON,
		ExitCodes: map[int]string{0: "no matches", 1: "matches found"},
	}
}

func (Nuclei) Parse(path string) ([]finding.Finding, error) {
	var out []finding.Finding

	err := adapter.ScanNDJSON(path, adapter.MaxFileSize(), func(line []byte) error {
		if err := adapter.CheckJSONDepth(line, adapter.MaxJSONDepth()); err != nil {
			return err
		}
		var r map[string]interface{}
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}

		ruleID := adapter.GetString(r, "template-id", "templateID")
		if ruleID == "" {
			return nil
		}
		path := adapter.GetString(r, "matched-at", "host")
		msg := ruleID
		sev := finding.SeverityMedium
		var refs []string
		if info, ok := r["info"].(map[string]interface{}); ok {
			if name := adapter.GetString(info, "name"); name != "" {
				msg = name
			}
			sev = finding.NormalizeSeverity(adapter.GetString(info, "severity"))
			refs = adapter.GetStringSlice(info, "reference")
		}

		f := finding.New(finding.Tool{Name: "nuclei"}, ruleID, sev,
			finding.Location{Path: path}, msg)
		f.Tags = []string{"dast"}
		f.References = refs
		f.Raw = toRaw(r)
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, ignoreBoundedErr(err)
	}
	return out, nil
}
