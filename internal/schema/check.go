package schema

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/envinit/internal/validators"
)

// CheckError carries every structural problem found in a schema.
type CheckError struct {
	Schema string
	Errors []string
}

func (e *CheckError) Error() string {
	name := e.Schema
	if name == "" {
		name = "schema"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s is invalid: %s", name, e.Errors[0])
	}
	return fmt.Sprintf("%s is invalid, %d problems:\n  - %s", name, len(e.Errors), strings.Join(e.Errors, "\n  - "))
}

// Check verifies that s is internally consistent before any config is
// validated against it. Specs are resolved through reg, so custom validators
// registered for this schema count as known. Config values are never read.
func Check(s *Schema, reg *validators.Registry) error {
	if s == nil {
		return &CheckError{Errors: []string{"schema is nil"}}
	}

	errs := append([]string(nil), s.problems...)
	if len(s.Rules) == 0 {
		errs = append(errs, "schema declares no fields")
	}
	for _, rule := range s.Rules {
		errs = append(errs, checkRule(rule, reg)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return &CheckError{Schema: s.Name, Errors: errs}
}

func checkRule(rule FieldRule, reg *validators.Registry) []string {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("[%s] ", rule.Key)+fmt.Sprintf(format, args...))
	}

	switch {
	case strings.TrimSpace(rule.Key) == "":
		errs = append(errs, "field with an empty key")
	case rule.Key != NormalizeKey(rule.Key):
		add("key is not normalized, write it as '%s'", NormalizeKey(rule.Key))
	case rule.Key == ReservedKey:
		add("key is reserved for loaded credentials")
	}

	switch {
	case rule.Type == "":
		add("missing 'type'")
	case !rule.Type.Valid():
		add("unknown type '%s', expected one of [%s]", rule.Type, typeNames())
	case rule.Default != nil && !rule.Type.Matches(rule.Default):
		add("default %v is %s, expected %s", rule.Default, validators.TypeName(rule.Default), rule.Type)
	}

	if rule.Required == RequirementUnset {
		add("missing 'required'")
	}

	for _, spec := range rule.Validators {
		if spec.Kind == validators.SpecInvalid {
			add("invalid validator specification: %v (expected a name, a mapping with 'name', or a check)", spec.Raw)
			continue
		}
		if _, err := reg.Resolve(spec); err != nil {
			add("%v", err)
		}
	}
	return errs
}
