package adapters

import (
	"strings"

	"github.com/lvonguyen/secfindings/internal/finding"
)

// errorWarningInfoSeverity implements the Semgrep/Hadolint token mapping
// from spec section 4.3: ERROR->HIGH, WARNING->MEDIUM, INFO->LOW. This is
// distinct from finding.NormalizeSeverity's generic tool-vocabulary mapping,
// which sends INFO to SeverityInfo -- the wrong bucket for this family.
func errorWarningInfoSeverity(token string) finding.Severity {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "ERROR":
		return finding.SeverityHigh
	case "WARNING", "WARN":
		return finding.SeverityMedium
	case "INFO":
		return finding.SeverityLow
	default:
		return finding.SeverityMedium
	}
}

// cvssCandidate is one reported CVSS score/vector pair, tagged with its
// version family.
type cvssCandidate struct {
	version string // "2.0" or a "3.x" family tag
	score   float64
	vector  string
	ok      bool
}

// preferCVSS implements the shared rule used by the CVSS-scored adapters
// (OSV, Grype, Dependency-Check): prefer v3 over v2, bucket the chosen score
// into the canonical severity, and fall back to an explicit severity token
// when neither CVSS score is present.
func preferCVSS(v3, v2 cvssCandidate, explicitSeverityToken string) (*finding.CVSS, finding.Severity) {
	switch {
	case v3.ok:
		return &finding.CVSS{Version: v3.version, Score: v3.score, Vector: v3.vector}, finding.CVSSBucket(v3.score)
	case v2.ok:
		return &finding.CVSS{Version: v2.version, Score: v2.score, Vector: v2.vector}, finding.CVSSBucket(v2.score)
	case explicitSeverityToken != "":
		return nil, finding.NormalizeSeverity(explicitSeverityToken)
	default:
		return nil, finding.SeverityMedium
	}
}
