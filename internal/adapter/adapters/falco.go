package adapters

import (
	"encoding/json"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Falco is an NDJSON-stream adapter: one runtime security event per line,
// per-line isolation. Severity is derived from the "priority" field via the
// Falco-specific bucketing in finding.FalcoPriorityBucket.
type Falco struct{}

func (Falco) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "falco", Version: "1.0.0", ToolName: "Falco",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatNDJSON,
		ExitCodes: map[int]string{0: "no events"},
	}
}

func (Falco) Parse(path string) ([]finding.Finding, error) {
	var out []finding.Finding

	err := adapter.ScanNDJSON(path, adapter.MaxFileSize(), func(line []byte) error {
		if err := adapter.CheckJSONDepth(line, adapter.MaxJSONDepth()); err != nil {
			return err
		}
		var r map[string]interface{}
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}

		ruleID := adapter.GetString(r, "rule")
		if ruleID == "" {
			return nil
		}
		msg := adapter.GetString(r, "output")
		sev := finding.FalcoPriorityBucket(adapter.GetString(r, "priority"))

		path := "<hostname>/runtime/" + ruleID
		if output, ok := r["output_fields"].(map[string]interface{}); ok {
			if host := adapter.GetString(output, "k8s.pod.name", "container.name"); host != "" {
				path = host + "/" + ruleID
			}
		}

		f := finding.New(finding.Tool{Name: "falco"}, ruleID, sev,
			finding.Location{Path: path}, msg)
		f.Tags = []string{"runtime-security"}
		f.Raw = toRaw(r)
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, ignoreBoundedErr(err)
	}
	return out, nil
}
