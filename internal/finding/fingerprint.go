package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// fingerprintLen is the number of hex characters kept from the SHA-256
// digest. 16 hex chars (64 bits) trades compactness for collision
// resistance; do not change this without bumping SchemaVersion.
const fingerprintLen = 16

// Fingerprint computes the deterministic 16-hex identity of a finding from
// (tool.name, ruleId, location.path, location.startLine, message[:120]).
// Two findings with identical inputs always produce the same id; this is
// the deduplication key downstream consumers use.
func Fingerprint(f Finding) string {
	msg := f.Message
	if len(msg) > 120 {
		msg = msg[:120]
	}

	var b strings.Builder
	b.WriteString(f.Tool.Name)
	b.WriteByte('|')
	b.WriteString(f.RuleID)
	b.WriteByte('|')
	b.WriteString(f.Location.Path)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.Location.StartLine))
	b.WriteByte('|')
	b.WriteString(msg)

	digest := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(digest[:])[:fingerprintLen]
}
