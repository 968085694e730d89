package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/finding"
)

// allForUniversalProps lists every adapter so the universal properties
// P1-P3 can be checked once per tool instead of once per file.
func allForUniversalProps() []adapter.Adapter {
	return All()
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// P1: parse(nonexistent_path) == [].
func TestUniversalMissingFile(t *testing.T) {
	for _, a := range allForUniversalProps() {
		findings, err := a.Parse(filepath.Join(t.TempDir(), "does-not-exist"))
		if err != nil {
			t.Fatalf("%s: missing file returned error: %v", a.Metadata().Name, err)
		}
		if len(findings) != 0 {
			t.Fatalf("%s: expected no findings for missing file", a.Metadata().Name)
		}
	}
}

// P2: parse(empty_file) == [].
func TestUniversalEmptyFile(t *testing.T) {
	for _, a := range allForUniversalProps() {
		path := writeTemp(t, "empty.out", "")
		findings, err := a.Parse(path)
		if err != nil {
			t.Fatalf("%s: empty file returned error: %v", a.Metadata().Name, err)
		}
		if len(findings) != 0 {
			t.Fatalf("%s: expected no findings for empty file", a.Metadata().Name)
		}
	}
}

// P3: parse(any_non_json_content) == [] without panicking.
func TestUniversalMalformedContent(t *testing.T) {
	for _, a := range allForUniversalProps() {
		path := writeTemp(t, "bad.out", "not json at all {{{")
		findings, err := a.Parse(path)
		if err != nil {
			t.Fatalf("%s: malformed content returned error: %v", a.Metadata().Name, err)
		}
		if len(findings) != 0 {
			t.Fatalf("%s: expected no findings for malformed content", a.Metadata().Name)
		}
	}
}

// P8: tool.name equals the adapter's registered name, checked for Bandit
// against the findings its minimal valid fixture produces.
func TestBanditToolNameMatchesMetadata(t *testing.T) {
	path := writeTemp(t, "bandit.json", banditFixture)
	findings, err := Bandit{}.Parse(path)
	if err != nil || len(findings) == 0 {
		t.Fatalf("expected at least one bandit finding, err=%v", err)
	}
	wantName := Bandit{}.Metadata().Name
	for _, f := range findings {
		if f.Tool.Name != wantName {
			t.Fatalf("tool.name %q != metadata name %q", f.Tool.Name, wantName)
		}
	}
}

const banditFixture = `{"results":[{"filename":"scripts/core/foo.py","line_number":12,
 "issue_text":"Use of assert detected.","test_id":"B101",
 "test_name":"assert_used","issue_severity":"LOW","issue_confidence":"HIGH"}]}`

// S1 — Bandit basic.
func TestScenarioBanditBasic(t *testing.T) {
	path := writeTemp(t, "bandit.json", banditFixture)
	findings, err := Bandit{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.RuleID != "B101" || f.Severity != finding.SeverityLow {
		t.Fatalf("unexpected rule/severity: %+v", f)
	}
	if f.Location.StartLine != 12 || f.Location.Path != "scripts/core/foo.py" {
		t.Fatalf("unexpected location: %+v", f.Location)
	}
	if f.Tool.Name != "bandit" {
		t.Fatalf("unexpected tool name: %v", f.Tool.Name)
	}
	hasSast, hasPython := false, false
	for _, tag := range f.Tags {
		if tag == "sast" {
			hasSast = true
		}
		if tag == "python" {
			hasPython = true
		}
	}
	if !hasSast || !hasPython {
		t.Fatalf("expected sast+python tags, got %v", f.Tags)
	}
}

// S2 — Trufflehog NDJSON mixed with nested array.
func TestScenarioTrufflehogMixed(t *testing.T) {
	content := `{"DetectorName":"Slack","Verified":true,"SourceMetadata":{"Data":{"Filesystem":{"file":"webhooks.js"}}}}
[[{"DetectorName":"Nested","Verified":false}]]
`
	path := writeTemp(t, "trufflehog.ndjson", content)
	findings, err := Trufflehog{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}

	byRule := map[string]finding.Finding{}
	for _, f := range findings {
		byRule[f.RuleID] = f
	}
	if byRule["Slack"].Severity != finding.SeverityHigh {
		t.Fatalf("expected Slack finding HIGH, got %+v", byRule["Slack"])
	}
	if byRule["Nested"].Severity != finding.SeverityMedium {
		t.Fatalf("expected Nested finding MEDIUM, got %+v", byRule["Nested"])
	}
}

// S3 — Semgrep severity mapping.
func TestScenarioSemgrepSeverityMapping(t *testing.T) {
	content := `{"results":[
		{"check_id":"r1","path":"a.go","start":{"line":1},"extra":{"message":"m1","severity":"WARNING"}},
		{"check_id":"r2","path":"b.go","start":{"line":2},"extra":{"message":"m2","severity":"INFO"}}
	]}`
	path := writeTemp(t, "semgrep.json", content)
	findings, err := Semgrep{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Severity != finding.SeverityMedium || findings[1].Severity != finding.SeverityLow {
		t.Fatalf("unexpected severities: %v, %v", findings[0].Severity, findings[1].Severity)
	}
}

// S4 — Checkov CI/CD tagging.
func TestScenarioCheckovCICDTagging(t *testing.T) {
	content := `{"check_type":"github_actions","results":{"failed_checks":[
		{"check_id":"CKV_GHA_1","file_path":".github/workflows/ci.yml","check_name":"no plaintext secrets"}
	]}}`
	path := writeTemp(t, "checkov.json", content)
	findings, err := Checkov{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	tags := findings[0].Tags
	hasCICD, hasPolicy, hasIAC := false, false, false
	for _, tag := range tags {
		switch tag {
		case "cicd-security":
			hasCICD = true
		case "policy":
			hasPolicy = true
		case "iac":
			hasIAC = true
		}
	}
	if !hasCICD || !hasPolicy || hasIAC {
		t.Fatalf("expected cicd-security+policy, not iac; got %v", tags)
	}
}

// S5 — Prowler NDJSON with PASS filter.
func TestScenarioProwlerPassFilter(t *testing.T) {
	content := `{"Status":"PASS","CheckID":"c1","Provider":"aws"}
{"Status":"FAIL","CheckID":"c2","Provider":"aws","CheckTitle":"t2"}
{"Status":"FAIL","CheckID":"c3","Provider":"aws","CheckTitle":"t3"}
`
	path := writeTemp(t, "prowler.ndjson", content)
	findings, err := Prowler{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings (PASS dropped), got %d", len(findings))
	}
	for _, f := range findings {
		found := false
		for _, tag := range f.Tags {
			if tag == "aws" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected provider tag aws, got %v", f.Tags)
		}
	}
}

// S6 — Kubescape CRITICAL scoring, one finding per failed resource.
func TestScenarioKubescapeCriticalScoring(t *testing.T) {
	content := `{"controls":[{"controlID":"C-001","name":"test control","scoreFactor":10,"failedResources":["pod-1","pod-2"]}]}`
	path := writeTemp(t, "kubescape.json", content)
	findings, err := Kubescape{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	seen := map[string]bool{}
	for _, f := range findings {
		if f.Severity != finding.SeverityCritical {
			t.Fatalf("expected CRITICAL, got %v", f.Severity)
		}
		seen[f.Location.Path] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected distinct location paths, got %v", seen)
	}
}

// S7 — Grype CVSS v3 preferred over v2.
func TestScenarioGrypeCVSSv3PreferredOverV2(t *testing.T) {
	content := `{"matches":[{
		"vulnerability":{"id":"CVE-2021-1234","severity":"High","cvss":[
			{"version":"2.0","metrics":{"baseScore":7.5}},
			{"version":"3.1","metrics":{"baseScore":9.8},"vector":"CVSS:3.1/AV:N"}
		]},
		"artifact":{"name":"libfoo","version":"1.0.0"}
	}]}`
	path := writeTemp(t, "grype.json", content)
	findings, err := Grype{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.CVSS == nil || f.CVSS.Version != "3.x" || f.CVSS.Score != 9.8 {
		t.Fatalf("expected CVSS v3.x score 9.8, got %+v", f.CVSS)
	}
	if f.Severity != finding.SeverityCritical {
		t.Fatalf("expected CRITICAL bucket for score 9.8, got %v", f.Severity)
	}
}

// Tolerant field reads: Checkov alternate key repo_file_path.
func TestCheckovAlternateFileKey(t *testing.T) {
	content := `{"check_type":"terraform","results":{"failed_checks":[
		{"check_id":"CKV_AWS_1","repo_file_path":"main.tf","check_name":"bucket not encrypted","file_line_range":[10,15]}
	]}}`
	path := writeTemp(t, "checkov.json", content)
	findings, err := Checkov{}.Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].Location.Path != "main.tf" {
		t.Fatalf("expected tolerant file_path read, got %+v", findings)
	}
	if findings[0].Location.StartLine != 10 {
		t.Fatalf("expected line range parsed to first int 10, got %d", findings[0].Location.StartLine)
	}
}
