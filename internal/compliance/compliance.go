// Package compliance enriches a Finding with OWASP/CWE/PCI-DSS/NIST/CIS
// framework control tags derived from its ruleId and tags.
package compliance

import (
	"regexp"
	"strings"

	"github.com/lvonguyen/secfindings/internal/finding"
)

// rulePattern maps a compiled ruleId pattern to the framework controls it
// satisfies. Patterns are checked in declaration order; all matches
// contribute to the merged compliance map.
type rulePattern struct {
	pattern *regexp.Regexp
	mapping map[string][]string
}

// tagMappings maps a classification/domain tag to the framework controls it
// satisfies. Keys are matched case-insensitively against finding.Tags.
var tagMappings = map[string]map[string][]string{
	"sast": {
		"owasp":   {"A03:2021", "A06:2021"},
		"nist":    {"SI-10"},
		"pci-dss": {"6.2.4"},
	},
	"secret": {
		"owasp":   {"A02:2021", "A07:2021"},
		"nist":    {"IA-5"},
		"pci-dss": {"3.5.1"},
	},
	"hardcoded-secret": {
		"cwe": {"CWE-798"},
	},
	"sca": {
		"owasp":   {"A06:2021"},
		"nist":    {"SI-2", "RA-5"},
		"pci-dss": {"6.3.3"},
	},
	"sbom": {
		"nist": {"SA-11", "SR-4"},
	},
	"iac": {
		"owasp": {"A05:2021"},
		"nist":  {"CM-6"},
		"cis":   {"5.1"},
	},
	"cicd-security": {
		"nist": {"CM-3", "SA-15"},
	},
	"cloud-security": {
		"owasp": {"A05:2021"},
		"nist":  {"AC-3", "CM-6"},
	},
	"k8s-security": {
		"nist": {"AC-3", "CM-6", "SC-7"},
		"cis":  {"5.2"},
	},
	"malware-detection": {
		"nist": {"SI-3"},
	},
	"runtime-security": {
		"nist": {"SI-4"},
	},
	"mobile-security": {
		"owasp": {"M1", "M2"},
	},
	"api-security": {
		"owasp": {"API1:2023", "API2:2023"},
	},
	"data-privacy": {
		"nist":    {"PT-2"},
		"pci-dss": {"3.1"},
	},
	"license-compliance": {
		"nist": {"SA-4"},
	},
	"dast": {
		"owasp": {"A03:2021"},
		"nist":  {"CA-8"},
	},
	"fuzzing": {
		"nist": {"SA-11"},
	},
	"cve": {
		"nist": {"RA-5", "SI-2"},
	},
	"xss": {
		"owasp": {"A03:2021"},
		"cwe":   {"CWE-79"},
	},
	"sql-injection": {
		"owasp": {"A03:2021"},
		"cwe":   {"CWE-89"},
	},
}

// rulePatterns handles cases where the tag vocabulary is too coarse and the
// ruleId itself carries the better signal (e.g. a bare CVE identifier).
var rulePatterns = []rulePattern{
	{
		pattern: regexp.MustCompile(`^CVE-\d{4}-\d+$`),
		mapping: map[string][]string{"nist": {"RA-5", "SI-2"}},
	},
	{
		pattern: regexp.MustCompile(`(?i)^B1\d\d$`), // bandit rule family
		mapping: map[string][]string{"owasp": {"A03:2021"}},
	},
}

// Enrich is a pure function that adds a compliance field populated from the
// tables above, keyed by the finding's ruleId and tags. It never removes or
// alters any other field, and it is idempotent: re-enriching an already
// enriched finding yields the same compliance map.
func Enrich(f finding.Finding) finding.Finding {
	merged := map[string][]string{}

	for _, tag := range f.Tags {
		if fw, ok := tagMappings[strings.ToLower(tag)]; ok {
			mergeFrameworks(merged, fw)
		}
	}

	for _, rp := range rulePatterns {
		if rp.pattern.MatchString(f.RuleID) {
			mergeFrameworks(merged, rp.mapping)
		}
	}

	if f.Risk != nil {
		for _, cwe := range f.Risk.CWE {
			merged["cwe"] = appendUnique(merged["cwe"], cwe)
		}
		for _, owasp := range f.Risk.OWASP {
			merged["owasp"] = appendUnique(merged["owasp"], owasp)
		}
	}

	if len(merged) == 0 {
		return f
	}

	f.Compliance = merged
	return f
}

func mergeFrameworks(dst, src map[string][]string) {
	for fw, controls := range src {
		for _, c := range controls {
			dst[fw] = appendUnique(dst[fw], c)
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
