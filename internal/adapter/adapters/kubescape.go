package adapters

import (
	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// Kubescape is an object-with-results-array adapter: top-level "controls"
// array. Only controls with a non-empty failedResources list are emitted,
// one finding per failed resource, so distinct resources get distinct
// location.path values (and therefore distinct fingerprints). Severity
// buckets the control's scoreFactor per the Kubescape-specific thresholds.
type Kubescape struct{}

func (Kubescape) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Name: "kubescape", Version: "1.0.0", ToolName: "Kubescape",
		SchemaVersion: finding.SchemaVersion, OutputFormat: adapter.FormatJSON,
		ExitCodes: map[int]string{0: "no failed controls", 1: "failed controls"},
	}
}

type kubescapeReport struct {
	Controls []map[string]interface{} `json:"controls"`
}

func (Kubescape) Parse(path string) ([]finding.Finding, error) {
	data, err := adapter.ReadBounded(path, adapter.MaxFileSize())
	if err != nil || data == nil {
		return nil, ignoreBoundedErr(err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var report kubescapeReport
	if err := adapter.DecodeBounded(data, adapter.MaxJSONDepth(), &report); err != nil {
		return nil, nil
	}
	if report.Controls == nil {
		return nil, nil
	}

	var out []finding.Finding
	for _, c := range report.Controls {
		ruleID := adapter.GetString(c, "controlID")
		if ruleID == "" {
			continue
		}
		resources := adapter.GetStringSlice(c, "failedResources")
		if len(resources) == 0 {
			continue
		}
		scoreFactor, _ := adapter.GetFloat(c, "scoreFactor")
		sev := finding.KubescapeScoreBucket(scoreFactor)
		msg := adapter.GetString(c, "name")

		for _, resource := range resources {
			f := finding.New(finding.Tool{Name: "kubescape"}, ruleID, sev,
				finding.Location{Path: resource}, msg)
			f.Tags = []string{"k8s-security"}
			f.Raw = toRaw(c)
			out = append(out, f)
		}
	}
	return out, nil
}
