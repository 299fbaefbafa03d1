package validators

import (
	"fmt"
	"strings"
)

// SpecKind tags a validator spec.
type SpecKind int

const (
	// SpecInvalid marks a spec that was neither a name, a parametrized
	// mapping nor an inline check.
	SpecInvalid SpecKind = iota
	// SpecNamed references a validator by name.
	SpecNamed
	// SpecParametrized references a factory by name with arguments.
	SpecParametrized
	// SpecInline embeds a check directly.
	SpecInline
)

// String returns the string representation of SpecKind.
func (k SpecKind) String() string {
	switch k {
	case SpecNamed:
		return "named"
	case SpecParametrized:
		return "parametrized"
	case SpecInline:
		return "inline"
	default:
		return "invalid"
	}
}

// Spec is one entry of a field rule's validator list.
type Spec struct {
	Kind SpecKind
	// Name is the registry name, or an optional label for inline checks.
	Name string
	// Args holds the factory arguments of a parametrized spec.
	Args map[string]any
	// Inline is the embedded check of an inline spec.
	Inline Check
	// Raw is the value the spec was parsed from, kept for error messages.
	Raw any
}

// Named builds a spec that references a validator by name.
func Named(name string) Spec {
	return Spec{Kind: SpecNamed, Name: name, Raw: name}
}

// Parametrized builds a spec that invokes a factory with args.
func Parametrized(name string, args map[string]any) Spec {
	raw := make(map[string]any, len(args)+1)
	for k, v := range args {
		raw[k] = v
	}
	raw["name"] = name
	return Spec{Kind: SpecParametrized, Name: name, Args: args, Raw: raw}
}

// Inline builds a spec around an embedded check. label may be empty.
func Inline(label string, check Check) Spec {
	return Spec{Kind: SpecInline, Name: label, Inline: check}
}

// Label is the name used when reporting failures of this spec.
func (s Spec) Label() string {
	if s.Kind == SpecInline && s.Name == "" {
		return "inline"
	}
	if s.Name == "" {
		return "invalid"
	}
	return s.Name
}

func (s Spec) String() string {
	switch s.Kind {
	case SpecNamed:
		return s.Name
	case SpecParametrized:
		return fmt.Sprintf("%s(%s)", s.Name, formatArgs(s.Args))
	case SpecInline:
		return s.Label()
	default:
		return fmt.Sprintf("%v", s.Raw)
	}
}

// ParseSpec classifies a decoded schema value: a string is a named
// reference, a mapping with a string "name" is parametrized, a Check or a
// matching func is inline. Anything else yields SpecInvalid.
func ParseSpec(raw any) Spec {
	switch v := raw.(type) {
	case Spec:
		return v
	case string:
		return Named(v)
	case Check:
		return Spec{Kind: SpecInline, Inline: v, Raw: raw}
	case func(any, string) error:
		return Spec{Kind: SpecInline, Inline: Check(v), Raw: raw}
	case map[string]any:
		name, ok := v["name"].(string)
		if !ok || name == "" {
			return Spec{Kind: SpecInvalid, Raw: raw}
		}
		args := make(map[string]any, len(v))
		for k, arg := range v {
			if k != "name" {
				args[k] = arg
			}
		}
		return Spec{Kind: SpecParametrized, Name: name, Args: args, Raw: raw}
	default:
		return Spec{Kind: SpecInvalid, Raw: raw}
	}
}

func formatArgs(args map[string]any) string {
	parts := make([]string, 0, len(args))
	for _, name := range argNames(args) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, args[name]))
	}
	return strings.Join(parts, ", ")
}
