package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// YARA is an object-with-results-array adapter ("matches" key) for malware
// rule matches. When a scanned target path is present it is used; otherwise
// the synthetic "malware:<rule>" path from the data model's location
// invariant applies.
type YARA struct{}

func (YARA) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "yara", Version: "1.0.0", ToolName: "YARA",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no matches", 1: "matches found"},
	}
}

type yaraReport struct {
	Matches []map[string]interface{} `json:"matches"`
}

func (YARA) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report yaraReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Matches == nil {
		return nil, nil
	}

	out := make([]finding.Finding, 0, len(report.Matches))
	for _, m := range report.Matches {
		rule := adapter.GetString(m, "rule")
		if rule == "" {
			continue
		}
		path := adapter.GetString(m, "target", "file")
		if path == "" {
			path = "malware:" + rule
		}
		sev := finding.SeverityMedium
		if meta, ok := m["meta"].(map[string]interface{}); ok {
			if token := adapter.GetString(meta, "severity"); token != "" {
				sev = finding.NormalizeSeverity(token)
			}
		}

		f := finding.New(finding.Tool{Name: "yara"}, rule, sev,
			finding.Location{Path: path}, "YARA rule matched: "+rule)
		f.Tags = []string{"malware-detection"}
		f.Raw = toRaw(m)
		out = append(out, f)
	}
	return out, nil
}
