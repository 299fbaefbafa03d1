// Package sensitive wraps secret values so they never render as plaintext.
// A Secret prints as "*****" through fmt, YAML, JSON and slog, while Reveal
// returns the underlying value for the code that actually needs it.
package sensitive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
)

// Mask is the text every Secret renders as.
const Mask = "*****"

// Secret holds a sensitive value loaded from an auth file.
type Secret struct {
	value any
}

// New wraps value in a Secret.
func New(value any) Secret {
	return Secret{value: value}
}

// Reveal returns the wrapped value.
func (s Secret) Reveal() any {
	return s.value
}

// RevealString returns the wrapped value formatted as a string.
// Strings are returned as-is, other values through fmt.
func (s Secret) RevealString() string {
	if str, ok := s.value.(string); ok {
		return str
	}
	if s.value == nil {
		return ""
	}
	return fmt.Sprint(s.value)
}

// Equal reports whether other holds the same value. other may be another
// Secret or a raw value.
func (s Secret) Equal(other any) bool {
	if o, ok := other.(Secret); ok {
		return reflect.DeepEqual(s.value, o.value)
	}
	if o, ok := other.(*Secret); ok && o != nil {
		return reflect.DeepEqual(s.value, o.value)
	}
	return reflect.DeepEqual(s.value, other)
}

func (s Secret) String() string {
	return Mask
}

// GoString is used by %#v.
func (s Secret) GoString() string {
	return "sensitive.Secret{" + Mask + "}"
}

// Format keeps every verb (%v, %+v, %s, %q, %x ...) masked.
func (s Secret) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			fmt.Fprint(f, s.GoString())
			return
		}
		fmt.Fprint(f, Mask)
	case 'q':
		fmt.Fprintf(f, "%q", Mask)
	default:
		fmt.Fprint(f, Mask)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s Secret) MarshalYAML() (interface{}, error) {
	return Mask, nil
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(Mask)
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(Mask)
}

// MaskConfig returns a shallow copy of cfg that is safe to print. The "auth"
// section keeps its system names but every system is replaced by the mask,
// and any top-level Secret is masked as well.
func MaskConfig(cfg map[string]any) map[string]any {
	masked := make(map[string]any, len(cfg))
	for key, value := range cfg {
		switch v := value.(type) {
		case Secret, *Secret:
			masked[key] = Mask
		default:
			if key == "auth" {
				if systems, ok := authSystems(v); ok {
					section := make(map[string]any, len(systems))
					for _, name := range systems {
						section[name] = Mask
					}
					masked[key] = section
					continue
				}
			}
			masked[key] = value
		}
	}
	return masked
}

// authSystems returns the system names of an auth section, whatever map
// shape it was attached with.
func authSystems(v any) ([]string, bool) {
	switch section := v.(type) {
	case map[string]map[string]Secret:
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		return names, true
	case map[string]any:
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		return names, true
	default:
		return nil, false
	}
}
