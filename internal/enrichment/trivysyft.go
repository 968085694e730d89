// Package enrichment cross-links Trivy vulnerability findings with Syft SBOM
// package locations after all per-target adapters have run.
package enrichment

import (
	"go.uber.org/zap"

	"github.com/lvonguyen/secfindings/internal/finding"
)

// EnrichTrivySyft annotates Trivy findings in targetFindings with richer
// package-location data sourced from any Syft findings in the same slice,
// matching on PURL first, then package name+version. It never changes id,
// severity, ruleId, or message; it only populates context.package_path,
// context.purl, and references. Failures in matching are isolated per
// finding: a Trivy finding that can't be matched is returned unenriched,
// and a malformed Syft record never prevents other matches.
func EnrichTrivySyft(targetFindings []finding.Finding, logger *zap.Logger) []finding.Finding {
	if logger == nil {
		logger = zap.NewNop()
	}

	byPURL := map[string]finding.Finding{}
	byNameVersion := map[string]finding.Finding{}
	for _, f := range targetFindings {
		if f.Tool.Name != "syft" {
			continue
		}
		purl, _ := f.Context["purl"].(string)
		name, _ := f.Context["packageName"].(string)
		version, _ := f.Context["packageVersion"].(string)
		if purl != "" {
			byPURL[purl] = f
		}
		if name != "" {
			byNameVersion[name+"@"+version] = f
		}
	}

	if len(byPURL) == 0 && len(byNameVersion) == 0 {
		return targetFindings
	}

	out := make([]finding.Finding, len(targetFindings))
	copy(out, targetFindings)

	for i, f := range out {
		if f.Tool.Name != "trivy" {
			continue
		}

		var sbom finding.Finding
		var matched bool

		if purl, ok := f.Context["purl"].(string); ok && purl != "" {
			sbom, matched = byPURL[purl]
		}
		if !matched {
			name, _ := f.Context["packageName"].(string)
			version, _ := f.Context["packageVersion"].(string)
			sbom, matched = byNameVersion[name+"@"+version]
		}
		if !matched {
			continue
		}

		enriched := f
		ctx := copyContext(f.Context)
		if sbom.Location.Path != "" {
			ctx["package_path"] = sbom.Location.Path
		}
		if purl, ok := sbom.Context["purl"].(string); ok && purl != "" {
			ctx["purl"] = purl
		}
		enriched.Context = ctx

		for _, ref := range sbom.References {
			enriched.References = appendIfMissing(enriched.References, ref)
		}

		logger.Debug("enriched trivy finding from syft sbom",
			zap.String("id", f.ID), zap.String("package", sbom.ID))
		out[i] = enriched
	}

	return out
}

func copyContext(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func appendIfMissing(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
