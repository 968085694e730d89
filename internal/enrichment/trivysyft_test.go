package enrichment

import (
	"testing"

	"github.com/lvonguyen/secfindings/internal/finding"
)

func trivyFinding(pkg, version string) finding.Finding {
	f := finding.New(finding.Tool{Name: "trivy"}, "CVE-2024-0001", finding.SeverityHigh,
		finding.Location{Path: "image:app"}, "vuln")
	f.Context = map[string]interface{}{"packageName": pkg, "packageVersion": version}
	return f
}

func syftFinding(pkg, version, purl, path string) finding.Finding {
	f := finding.New(finding.Tool{Name: "syft"}, pkg, finding.SeverityInfo,
		finding.Location{Path: path}, "component")
	f.Context = map[string]interface{}{"packageName": pkg, "packageVersion": version, "purl": purl}
	return f
}

func TestEnrichTrivySyftMatchesByNameVersion(t *testing.T) {
	input := []finding.Finding{
		trivyFinding("libfoo", "1.2.3"),
		syftFinding("libfoo", "1.2.3", "pkg:deb/libfoo@1.2.3", "/usr/lib/libfoo.so"),
	}
	out := EnrichTrivySyft(input, nil)

	trivy := out[0]
	if trivy.Context["package_path"] != "/usr/lib/libfoo.so" {
		t.Fatalf("expected package_path populated, got %+v", trivy.Context)
	}
	if trivy.ID != input[0].ID || trivy.Severity != input[0].Severity || trivy.RuleID != input[0].RuleID {
		t.Fatalf("enrichment must not change id/severity/ruleId")
	}
}

func TestEnrichTrivySyftNoMatchLeavesFindingUnchanged(t *testing.T) {
	input := []finding.Finding{
		trivyFinding("libbar", "9.9.9"),
		syftFinding("libfoo", "1.2.3", "pkg:deb/libfoo@1.2.3", "/usr/lib/libfoo.so"),
	}
	out := EnrichTrivySyft(input, nil)
	if _, ok := out[0].Context["package_path"]; ok {
		t.Fatalf("expected no package_path for unmatched package, got %+v", out[0].Context)
	}
}

func TestEnrichTrivySyftNoSyftFindingsReturnsInputUnchanged(t *testing.T) {
	input := []finding.Finding{trivyFinding("libfoo", "1.2.3")}
	out := EnrichTrivySyft(input, nil)
	if len(out) != 1 || out[0].ID != input[0].ID {
		t.Fatalf("expected findings preserved when no syft data present")
	}
}
