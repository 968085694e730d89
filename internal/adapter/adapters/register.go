package adapters

import "github.com/lvonguyen/secfindings/internal/adapter"

// All returns one instance of every built-in adapter. The aggregator's
// startup wiring registers exactly these; no adapters are loaded from a
// directory. A name registered twice follows the registry's
// last-registered-wins rule.
func All() []adapter.Adapter {
	return []adapter.Adapter{
		Bandit{},
		Semgrep{},
		SemgrepSecrets{},
		Trufflehog{},
		Gitleaks{},
		Checkov{},
		Terrascan{},
		Hadolint{},
		OSV{},
		Grype{},
		DependencyCheck{},
		Trivy{},
		Gosec{},
		ScanCode{},
		Kubescape{},
		Syft{},
		Horusec{},
		MobSF{},
		TrivyRBAC{},
		YARA{},
		ZAP{},
		Prowler{},
		Falco{},
		Nuclei{},
		CDXGen{},
	}
}
