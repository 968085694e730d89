package adapters

import (
	"encoding/json"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Prowler is an NDJSON-stream adapter: one cloud security posture check per
// line, per-line isolation. Only Status=="FAIL" records are emitted; PASS
// is dropped per §4.3.
type Prowler struct{}

func (Prowler) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "prowler", Version: "1.0.0", ToolName: "Prowler",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatNDJSON,
		ExitCodes: map[int]string{0: "no failed checks", 3: "failed checks"},
	}
}

func (Prowler) Parse(path string) ([]finding.Finding, error) {
	var out []finding.Finding

	err := adapter.ScanNDJSON(path, adapter.MaxFileSize(), func(line []byte) error {
		if err := adapter.CheckJSONDepth(line, adapter.MaxJSONDepth()); err != nil {
			return err
		}
		var r map[string]interface{}
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}

		if adapter.GetString(r, "Status", "status") != "FAIL" {
			return nil
		}

		ruleID := adapter.GetString(r, "CheckID", "check_id")
		if ruleID == "" {
			return nil
		}
		msg := adapter.GetString(r, "CheckTitle", "check_title", "StatusExtended")
		sev := finding.NormalizeSeverity(adapter.GetString(r, "Severity", "severity"))
		resource := adapter.GetString(r, "ResourceId", "resource_id")
		provider := adapter.GetString(r, "Provider", "provider")

		f := finding.New(finding.Tool{Name: "prowler"}, ruleID, sev,
			finding.Location{Path: resource}, msg)
		tags := []string{"cloud-security"}
		if provider != "" {
			tags = append(tags, provider)
		}
		f.Tags = tags
		f.Raw = toRaw(r)
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, ignoreBoundedErr(err)
	}
	return out, nil
}
