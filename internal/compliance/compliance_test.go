package compliance

import (
	"testing"

	"github.com/lvonguyen/secfindings/internal/finding"
)

func TestEnrichIdempotent(t *testing.T) {
	f := finding.New(finding.Tool{Name: "bandit"}, "B101", finding.SeverityLow,
		finding.Location{Path: "foo.py", StartLine: 12}, "Use of assert detected.")
	f.Tags = []string{"sast", "python"}

	once := Enrich(f)
	twice := Enrich(once)

	if len(once.Compliance) == 0 {
		t.Fatalf("expected compliance mapping for sast tag")
	}
	if len(once.Compliance["owasp"]) != len(twice.Compliance["owasp"]) {
		t.Fatalf("enrich is not idempotent: %v vs %v", once.Compliance, twice.Compliance)
	}
}

func TestEnrichNoMapping(t *testing.T) {
	f := finding.New(finding.Tool{Name: "x"}, "UNKNOWN-RULE", finding.SeverityLow,
		finding.Location{Path: "a"}, "msg")
	out := Enrich(f)
	if out.Compliance != nil {
		t.Fatalf("expected no compliance field, got %v", out.Compliance)
	}
}

func TestEnrichPreservesOtherFields(t *testing.T) {
	f := finding.New(finding.Tool{Name: "semgrep"}, "rule-1", finding.SeverityHigh,
		finding.Location{Path: "a.go", StartLine: 4}, "message text")
	f.Tags = []string{"sast"}
	before := f

	out := Enrich(f)

	if out.ID != before.ID || out.RuleID != before.RuleID || out.Severity != before.Severity ||
		out.Tool != before.Tool || out.Location != before.Location || out.Message != before.Message {
		t.Fatalf("enrich altered a non-compliance field")
	}
}
