// Package adapter defines the plugin contract every scanner adapter
// implements, plus the registry that discovers and dispatches them.
package adapter

import (
	"os"

	"github.com/lvonguyen/secfindings/internal/finding"
)

// OutputFormat is the on-disk shape an adapter expects to read.
type OutputFormat string

const (
	FormatJSON    OutputFormat = "json"
	FormatNDJSON  OutputFormat = "ndjson"
)

// Metadata is attached to an adapter at registration time.
type Metadata struct {
	// Name is the registration key and the value emitted as tool.name.
	Name string
	// Version is the adapter's own version, independent of the wrapped
	// tool's version.
	Version string
	// ToolName is the human label of the wrapped tool.
	ToolName string
	// SchemaVersion must equal finding.SchemaVersion.
	SchemaVersion string
	// OutputFormat is the shape of the file this adapter reads.
	OutputFormat OutputFormat
	// ExitCodes documents the wrapped tool's exit codes; informational
	// only, the core never executes the tool.
	ExitCodes map[int]string
}

// Adapter transforms one tool's native output file into canonical findings.
//
// Parse reads exactly one file, performs no network I/O, and does not
// write. It must not raise on ordinary malformed input (missing file, empty
// file, malformed JSON, wrong shape, bad records) -- the universal-property
// tests in package adapters check the missing, empty and malformed cases
// for every adapter. It may return an error
// for environmental failures (I/O errors, permission denied); the
// aggregation pipeline isolates those per-adapter.
type Adapter interface {
	Metadata() Metadata
	Parse(path string) ([]finding.Finding, error)
}

// Validator is implemented by adapters that can check validity more cheaply
// than a full parse. When absent, DefaultValidate is the fallback: "file
// exists and Parse does not error".
type Validator interface {
	Validate(path string) bool
}

// Fingerprinter is implemented by adapters that override the default
// fingerprint with a stable tool-native identity (e.g. a CVE id keyed by
// path) instead of finding.Fingerprint.
type Fingerprinter interface {
	Fingerprint(f finding.Finding) string
}

// DefaultValidate is the fallback Validator used by adapters that don't
// implement one themselves: "file exists AND parse does not raise" (spec
// section 4.1). A missing file fails validation even though Parse itself
// tolerates it and returns zero findings -- those are different contracts.
func DefaultValidate(a Adapter, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if _, err := a.Parse(path); err != nil {
		return false
	}
	return true
}
