// Package schema models the declarative rule set a config is validated
// against: one ordered FieldRule per key, each carrying a type, a
// requiredness flag, a default and a list of validator specs.
package schema

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/envinit/internal/validators"
)

// ReservedKey is the config section filled with credentials loaded from
// *_auth_path files. No field may be declared under it.
const ReservedKey = "auth"

// NormalizeKey trims key, replaces spaces with underscores and lowercases it.
// Config keys are normalized before validation, so field keys must already
// be in this form to ever match.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), " ", "_"))
}

// Type is the expected type of a config value. The zero value means the
// rule did not declare a type.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeMapping Type = "mapping"
	// TypeAny accepts every value.
	TypeAny Type = "any"
)

// KnownTypes lists every valid Type name.
var KnownTypes = []Type{TypeString, TypeInteger, TypeBoolean, TypeMapping, TypeAny}

// Valid reports whether t is one of KnownTypes.
func (t Type) Valid() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Matches reports whether value is an instance of t. Values are never
// coerced: "5" is not an integer and 1 is not a boolean.
func (t Type) Matches(value any) bool {
	if t == TypeAny || value == nil {
		return true
	}
	return validators.TypeName(value) == string(t)
}

// Requirement records whether a rule declared its key required.
type Requirement int

const (
	// RequirementUnset means the rule omitted "required".
	RequirementUnset Requirement = iota
	RequirementRequired
	RequirementOptional
)

// String returns the string representation of Requirement.
func (r Requirement) String() string {
	switch r {
	case RequirementRequired:
		return "required"
	case RequirementOptional:
		return "optional"
	default:
		return "unset"
	}
}

// FieldRule describes one config key.
type FieldRule struct {
	Key         string
	Type        Type
	Required    Requirement
	Default     any
	Validators  []validators.Spec
	Description string
}

// IsRequired reports whether the key must be present when it has no default.
func (r FieldRule) IsRequired() bool {
	return r.Required == RequirementRequired
}

// Schema is an ordered collection of field rules.
type Schema struct {
	Name  string
	Rules []FieldRule

	index map[string]int
	// problems are authoring errors found while building the schema. They
	// are reported by Check.
	problems []string
}

// New creates an empty schema.
func New(name string) *Schema {
	return &Schema{Name: name, index: make(map[string]int)}
}

// Add appends rules in order. A duplicate key keeps the first rule and is
// reported by Check.
func (s *Schema) Add(rules ...FieldRule) *Schema {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	for _, rule := range rules {
		if _, dup := s.index[rule.Key]; dup {
			s.problem(rule.Key, "duplicate field")
			continue
		}
		s.index[rule.Key] = len(s.Rules)
		s.Rules = append(s.Rules, rule)
	}
	return s
}

// Rule returns the rule for key.
func (s *Schema) Rule(key string) (FieldRule, bool) {
	if s == nil {
		return FieldRule{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return FieldRule{}, false
	}
	return s.Rules[i], true
}

// Keys returns the rule keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.Rules))
	for i, rule := range s.Rules {
		keys[i] = rule.Key
	}
	return keys
}

// Len returns the number of rules.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rules)
}

func (s *Schema) problem(key, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if key != "" {
		msg = fmt.Sprintf("[%s] %s", key, msg)
	}
	s.problems = append(s.problems, msg)
}

// Required builds a required rule without a default.
func Required(key string, t Type, specs ...validators.Spec) FieldRule {
	return FieldRule{Key: key, Type: t, Required: RequirementRequired, Validators: specs}
}

// Optional builds an optional rule. def may be nil.
func Optional(key string, t Type, def any, specs ...validators.Spec) FieldRule {
	return FieldRule{Key: key, Type: t, Required: RequirementOptional, Default: def, Validators: specs}
}

func typeNames() string {
	names := make([]string, len(KnownTypes))
	for i, t := range KnownTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
