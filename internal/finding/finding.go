// Package finding defines the canonical Finding record (schema v1.2.0) that
// every adapter produces and every downstream consumer reads.
package finding

import (
	"encoding/json"
	"strings"
)

// SchemaVersion is the literal schema version stamped on every emitted Finding.
// Changing the fingerprint algorithm or its truncation length requires bumping
// this value; do not do either casually.
const SchemaVersion = "1.2.0"

// Severity is the canonical 5-level severity enum.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Tool identifies the adapter and the underlying scanner it wraps.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Location pinpoints where a finding applies. StartLine 0 means "not
// applicable" (e.g. a cloud or runtime finding with no source line).
type Location struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine,omitempty"`
}

// Remediation is either a short instruction string or an autofix form with a
// concrete fix and ordered steps. Exactly one of Fix/Steps is expected to be
// populated when Autofix is true; Text carries the plain-string form. It
// marshals to a bare JSON string in the plain-text case and to
// {"fix": ..., "steps": [...]} in the autofix case, matching the spec's
// remediation field union.
type Remediation struct {
	Text    string
	Autofix bool
	Fix     string
	Steps   []string
}

// MarshalJSON implements the string|object union described in spec section 3.1.
func (r Remediation) MarshalJSON() ([]byte, error) {
	if r.Autofix {
		return json.Marshal(struct {
			Fix   string   `json:"fix,omitempty"`
			Steps []string `json:"steps,omitempty"`
		}{Fix: r.Fix, Steps: r.Steps})
	}
	return json.Marshal(r.Text)
}

// UnmarshalJSON accepts either a bare string or the {fix, steps} object form.
func (r *Remediation) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		r.Text = text
		r.Autofix = false
		return nil
	}
	var obj struct {
		Fix   string   `json:"fix"`
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Fix = obj.Fix
	r.Steps = obj.Steps
	r.Autofix = true
	return nil
}

// CVSS carries a scanner-reported CVSS score and vector.
type CVSS struct {
	Version string  `json:"version"`
	Score   float64 `json:"score"`
	Vector  string  `json:"vector,omitempty"`
}

// Risk carries CWE/OWASP classification and qualitative risk attributes.
type Risk struct {
	CWE        []string `json:"cwe,omitempty"`
	OWASP      []string `json:"owasp,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Likelihood string   `json:"likelihood,omitempty"`
	Impact     string   `json:"impact,omitempty"`
}

// Finding is an immutable record representing one normalized security issue.
// It is created once inside an adapter's Parse, mutated once by the
// compliance enricher, and may be mutated once more by cross-tool enrichment
// (Trivy+Syft); after that it must be treated as read-only.
type Finding struct {
	SchemaVersion string                 `json:"schemaVersion"`
	ID            string                 `json:"id"`
	RuleID        string                 `json:"ruleId"`
	Severity      Severity               `json:"severity"`
	Tool          Tool                   `json:"tool"`
	Location      Location               `json:"location"`
	Message       string                 `json:"message"`
	Title         string                 `json:"title,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Remediation   *Remediation           `json:"remediation,omitempty"`
	References    []string               `json:"references,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
	CVSS          *CVSS                  `json:"cvss,omitempty"`
	Risk          *Risk                  `json:"risk,omitempty"`
	Compliance    map[string][]string    `json:"compliance,omitempty"`
	Context       map[string]interface{} `json:"context,omitempty"`
	Raw           map[string]interface{} `json:"raw,omitempty"`
}

// New builds a Finding with schemaVersion and title defaults applied. tool
// must be the adapter's registered plugin name; severity is normalized by
// the caller (see NormalizeSeverity) before reaching here.
func New(tool Tool, ruleID string, severity Severity, loc Location, message string) Finding {
	f := Finding{
		SchemaVersion: SchemaVersion,
		RuleID:        ruleID,
		Severity:      severity,
		Tool:          tool,
		Location:      loc,
		Message:       message,
		Title:         ruleID,
	}
	f.ID = Fingerprint(f)
	return f
}

// WithTags returns a new slice holding domain followed by the given extra
// tags, flat and lowercase, without mutating the caller's slice.
func WithTags(domain string, extra ...string) []string {
	tags := make([]string, 0, len(extra)+1)
	tags = append(tags, strings.ToLower(domain))
	for _, t := range extra {
		tags = append(tags, strings.ToLower(t))
	}
	return tags
}
