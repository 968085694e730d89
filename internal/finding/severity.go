package finding

import "strings"

// NormalizeSeverity accepts any case/whitespace variant of a severity token
// and maps it to the canonical enum. Unknown tokens default to MEDIUM; this
// function never fails closed (per spec it must never throw).
func NormalizeSeverity(token string) Severity {
	t := strings.ToUpper(strings.TrimSpace(token))

	switch t {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	case "INFO":
		return SeverityInfo
	}

	switch t {
	case "ERROR":
		return SeverityHigh
	case "WARNING", "WARN":
		return SeverityMedium
	case "EMERGENCY", "ALERT":
		return SeverityCritical
	case "NOTICE":
		return SeverityLow
	case "DEBUG", "INFORMATIONAL":
		return SeverityInfo
	}

	return SeverityMedium
}

// CVSSBucket buckets a CVSS base score (v2 or v3) into the canonical
// severity enum per the thresholds in spec section 4.3.
func CVSSBucket(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// KubescapeScoreBucket buckets a Kubescape control scoreFactor.
func KubescapeScoreBucket(scoreFactor float64) Severity {
	switch {
	case scoreFactor >= 10:
		return SeverityCritical
	case scoreFactor >= 7:
		return SeverityHigh
	case scoreFactor >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// FalcoPriorityBucket maps a Falco priority token to the canonical severity.
func FalcoPriorityBucket(priority string) Severity {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case "EMERGENCY", "ALERT", "CRITICAL":
		return SeverityCritical
	case "ERROR":
		return SeverityHigh
	case "WARNING":
		return SeverityMedium
	case "NOTICE":
		return SeverityLow
	case "INFO", "INFORMATIONAL", "DEBUG":
		return SeverityInfo
	default:
		return SeverityMedium
	}
}
