// Package validation applies a schema to a raw config mapping: defaults are
// filled, placeholders rejected, types checked and validators run. Every
// problem across every field is collected before the run fails.
package validation

import (
	"fmt"

	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/validators"
	"github.com/mohae/deepcopy"
)

// Engine validates config mappings. The registry is only read.
type Engine struct {
	Registry *validators.Registry
}

// New creates an engine resolving specs through reg. A nil reg resolves
// built-ins only.
func New(reg *validators.Registry) *Engine {
	return &Engine{Registry: reg}
}

// Validate is a shorthand for New(reg).Validate(raw, s).
func Validate(raw map[string]any, s *schema.Schema, reg *validators.Registry) (map[string]any, error) {
	return New(reg).Validate(raw, s)
}

// Validate returns a new mapping holding every schema key with its resolved
// value plus the raw keys the schema does not mention. raw is not modified.
// On failure the returned error is an *Error and the mapping is nil.
func (e *Engine) Validate(raw map[string]any, s *schema.Schema) (map[string]any, error) {
	out := make(map[string]any, len(raw)+s.Len())
	for k, v := range raw {
		out[k] = deepcopy.Copy(v)
	}

	result := &Error{}
	if s != nil {
		for _, rule := range s.Rules {
			if value, keep := e.resolve(rule, out, result); keep {
				out[rule.Key] = value
			}
		}
	}

	if err := result.AsError(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve runs every check for one rule against out. keep is false when the
// field was skipped and its resolved value is meaningless.
func (e *Engine) resolve(rule schema.FieldRule, out map[string]any, result *Error) (value any, keep bool) {
	key := rule.Key
	value = out[key]

	if validators.IsPlaceholder(value) {
		result.Add(key, "unresolved placeholder value '%v', replace it with a real value", value)
		return nil, false
	}

	if value == nil {
		if rule.IsRequired() && rule.Default == nil {
			result.Add(key, "missing required field")
			return nil, false
		}
		value = deepcopy.Copy(rule.Default)
	}
	if value == nil {
		return nil, true
	}

	switch {
	case rule.Type == "":
	case !rule.Type.Valid():
		result.Add(key, "schema declares unknown type '%s'", rule.Type)
	case !rule.Type.Matches(value):
		result.Add(key, "expected type %s, got %s (%v)", rule.Type, validators.TypeName(value), value)
	}

	// validators run even after a type mismatch so every problem surfaces
	for _, spec := range rule.Validators {
		check, err := e.Registry.Resolve(spec)
		if err != nil {
			result.Add(key, "%s: %v", spec.Label(), err)
			continue
		}
		if err := runCheck(check, value, key); err != nil {
			result.Add(key, "%s: %v", spec.Label(), err)
		}
	}
	return value, true
}

func runCheck(check validators.Check, value any, key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panicked: %v", r)
		}
	}()
	return check(value, key)
}
