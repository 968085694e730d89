package adapters

import (
	"encoding/json"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Trufflehog is the tolerant multi-shape adapter: its output may be a JSON
// array, a single JSON object, an NDJSON stream, or arrays nested inside
// arrays. All four are flattened to a list of record objects; anything that
// isn't an object after flattening is skipped. Severity is verified=true ->
// HIGH, else MEDIUM.
type Trufflehog struct{}

func (Trufflehog) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "trufflehog", Version: "1.0.0", ToolName: "TruffleHog",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatNDJSON,
		ExitCodes: map[int]string{0: "no secrets", 183: "secrets found"},
	}
}

func (Trufflehog) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []map[string]interface{}

	// Try whole-document decode first: array, single object, or nested arrays.
	var whole interface{}
	if err := adapter.CheckJSONDepth(data, adapter.MaxJSONDepth()); err == nil {
		if err := json.Unmarshal(data, &whole); err == nil {
			records = flattenRecords(whole)
		}
	}

	// Whole-document decode failed (or yielded nothing): fall back to NDJSON,
	// isolating each line.
	if len(records) == 0 {
		_ = adapter.ScanNDJSON(path, adapter.MaxFileSize(), func(line []byte) error {
			var v interface{}
			if err := json.Unmarshal(line, &v); err != nil {
				return err
			}
			records = append(records, flattenRecords(v)...)
			return nil
		})
	}

	out := make([]finding.Finding, 0, len(records))
	for _, r := range records {
		detector := adapter.GetString(r, "DetectorName", "detectorName")
		if detector == "" {
			continue
		}

		path := ""
		if meta, ok := r["SourceMetadata"].(map[string]interface{}); ok {
			if data, ok := meta["Data"].(map[string]interface{}); ok {
				if fs, ok := data["Filesystem"].(map[string]interface{}); ok {
					path = adapter.GetString(fs, "file")
				}
			}
		}

		verified := false
		if v, ok := r["Verified"].(bool); ok {
			verified = v
		}
		sev := finding.SeverityMedium
		if verified {
			sev = finding.SeverityHigh
		}

		f := finding.New(finding.Tool{Name: "trufflehog"}, detector, sev,
			finding.Location{Path: path}, "Potential secret detected: "+detector)
		f.Tags = []string{"secret", "hardcoded-secret"}
		f.Raw = toRaw(r)
		out = append(out, f)
	}
	return out, nil
}

// flattenRecords descends into arbitrarily nested arrays and collects every
// map encountered as a candidate record, skipping non-object leaves.
func flattenRecords(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case []interface{}:
		var out []map[string]interface{}
		for _, e := range t {
			out = append(out, flattenRecords(e)...)
		}
		return out
	default:
		return nil
	}
}
