package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// ScanCode is an object-with-results-array adapter: top-level "files" array,
// each with a "licenses" array. Non-copyleft licenses are INFO; copyleft
// licenses (by category) are LOW, reflecting the extra scrutiny they need
// without treating them as a security defect.
type ScanCode struct{}

func (ScanCode) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "scancode", Version: "1.0.0", ToolName: "ScanCode Toolkit",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "scan completed"},
	}
}

type scancodeReport struct {
	Files []map[string]interface{} `json:"files"`
}

var copyleftCategories = map[string]bool{
	"Copyleft":           true,
	"Copyleft Limited":   true,
}

func (ScanCode) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report scancodeReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Files == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, file := range report.Files {
		path := adapter.GetString(file, "path")
		licenses, _ := file["licenses"].([]interface{})
		for _, l := range licenses {
			lic, ok := l.(map[string]interface{})
			if !ok {
				continue
			}
			ruleID := adapter.GetString(lic, "key", "spdx_license_key")
			if ruleID == "" {
				continue
			}
			category := adapter.GetString(lic, "category")
			sev := finding.SeverityInfo
			if copyleftCategories[category] {
				sev = finding.SeverityLow
			}

			f := finding.New(finding.Tool{Name: "scancode"}, ruleID, sev,
				finding.Location{Path: path}, "License detected: "+ruleID)
			f.Tags = []string{"license-compliance"}
			f.Raw = toRaw(lic)
			out = append(out, f)
		}
	}
	return out, nil
}
