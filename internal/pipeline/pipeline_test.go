package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/adapter/adapters"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	reg := adapter.NewRegistry(nil)
	for _, a := range adapters.All() {
		reg.Register(a)
	}
	return New(reg, nil, nil, nil, nil, nil, Config{WorkerCount: 4})
}

func writeFile(t *testing.T, root, target, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "individual-repos", target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const validTrufflehog = `{"DetectorName":"Slack","Verified":true,"SourceMetadata":{"Data":{"Filesystem":{"file":"webhooks.js"}}}}
`

// S8 / P10 — a directory with one well-formed tool output and one malformed
// output yields exactly the findings from the good one.
func TestRunIsolatesMalformedAdapterOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "r1", "trufflehog.json", validTrufflehog)
	writeFile(t, root, "r1", "semgrep.json", "INVALID{")

	p := newTestPipeline(t)
	result, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected exactly 1 finding from trufflehog, got %d: %+v", len(result.Findings), result.Findings)
	}
	if result.Findings[0].Tool.Name != "trufflehog" {
		t.Fatalf("expected trufflehog finding, got %+v", result.Findings[0])
	}
	if result.Cancelled {
		t.Fatalf("expected an uncancelled run")
	}
}

// Missing results root is treated as "nothing to do", matching walker.Walk's
// contract, not an error.
func TestRunOnMissingRootReturnsEmpty(t *testing.T) {
	p := newTestPipeline(t)
	result, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(result.Findings))
	}
}

// P5 — fingerprint stability: running the pipeline twice over the same
// input tree yields the same finding ids.
func TestRunFingerprintStability(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "r1", "trufflehog.json", validTrufflehog)

	p := newTestPipeline(t)
	first, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Findings) != 1 || len(second.Findings) != 1 {
		t.Fatalf("expected 1 finding per run, got %d and %d", len(first.Findings), len(second.Findings))
	}
	if first.Findings[0].ID != second.Findings[0].ID {
		t.Fatalf("expected stable fingerprint, got %q vs %q", first.Findings[0].ID, second.Findings[0].ID)
	}
}

// A pre-cancelled context still returns a well-formed (possibly empty)
// result rather than an error, with Cancelled set.
func TestRunRespectsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "r1", "trufflehog.json", validTrufflehog)

	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Cancelled {
		t.Fatalf("expected Cancelled to be true")
	}
}

// Compliance enrichment runs as part of Run: a secret finding picks up its
// OWASP/NIST/PCI-DSS mapping.
func TestRunAppliesComplianceEnrichment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "r1", "trufflehog.json", validTrufflehog)

	p := newTestPipeline(t)
	result, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	if len(result.Findings[0].Compliance) == 0 {
		t.Fatalf("expected compliance enrichment to populate a mapping")
	}
}

// Config.MaxFileSizeBytes actually reaches adapters: a ceiling smaller than
// the tool output file makes the pipeline treat it as oversized (zero
// findings), not a decorative setting that has no effect on Parse.
func TestRunMaxFileSizeBytesConstrainsAdapters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "r1", "trufflehog.json", validTrufflehog)

	reg := adapter.NewRegistry(nil)
	for _, a := range adapters.All() {
		reg.Register(a)
	}
	p := New(reg, nil, nil, nil, nil, nil, Config{WorkerCount: 4, MaxFileSizeBytes: 4, MaxJSONDepth: 256})
	defer adapter.SetLimits(adapter.DefaultMaxFileSize, adapter.DefaultMaxJSONDepth)

	result, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 0 {
		t.Fatalf("expected the oversized file to be refused, got %d findings", len(result.Findings))
	}
}
