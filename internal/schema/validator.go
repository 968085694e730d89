// Package schema optionally validates emitted findings against the
// canonical v1.2.0 JSON schema. Validation is advisory: it never blocks
// aggregation, and a Validator that fails to construct degrades to a no-op.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/lvonguyen/secfindings/internal/finding"
)

//go:embed schema.json
var embeddedSchema []byte

// Validator checks findings against the compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded v1.2.0 schema. If compilation fails the
// returned Validator is nil and the error is non-nil; callers that can't
// afford to fail startup over this should log and fall back to a nil
// *Validator, whose Validate always succeeds.
func NewValidator() (*Validator, error) {
	sch, err := jsonschema.CompileString("finding-1.2.0.json", string(embeddedSchema))
	if err != nil {
		return nil, fmt.Errorf("schema: compiling embedded schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks findings one at a time so the first failure is
// actionable. A nil Validator (construction failed or was skipped) always
// returns nil, matching the "silently advisory" behavior when no validator
// implementation is available.
func (v *Validator) Validate(findings []finding.Finding) error {
	if v == nil || v.schema == nil {
		return nil
	}
	for _, f := range findings {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("schema: marshaling finding %s: %w", f.ID, err)
		}
		var instance interface{}
		if err := json.Unmarshal(data, &instance); err != nil {
			return fmt.Errorf("schema: decoding finding %s: %w", f.ID, err)
		}
		if err := v.schema.Validate(instance); err != nil {
			return fmt.Errorf("schema: finding %s failed validation: %w", f.ID, err)
		}
	}
	return nil
}
