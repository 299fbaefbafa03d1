package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ariel-frischer/envinit/internal/schema"
)

// ParseValue converts a command-line string into the type a schema rule
// expects. TypeAny and untyped rules infer the type from the text.
func ParseValue(t schema.Type, value string) (any, error) {
	switch t {
	case schema.TypeBoolean:
		return parseBoolValue(value)
	case schema.TypeInteger:
		return parseIntValue(value)
	case schema.TypeString:
		return value, nil
	case schema.TypeMapping:
		return nil, fmt.Errorf("cannot set a mapping from a single value, set its entries with a dotted key")
	default:
		return InferValue(value), nil
	}
}

// InferValue determines a value's type from its text.
// Order of inference: bool literals -> integers -> string fallback.
func InferValue(value string) any {
	if b, err := parseBoolValue(value); err == nil {
		return b
	}
	if n, err := parseIntValue(value); err == nil {
		return n
	}
	return value
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", value)
	}
	return n, nil
}
