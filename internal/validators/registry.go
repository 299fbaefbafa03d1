// Package validators holds the validator registry used by the validation
// engine. A registry maps symbolic names to either a plain check or a factory
// that builds a check from schema-supplied arguments. Built-in entries are
// shared and immutable; custom entries live on a Registry value that is
// created per schema load, so nothing leaks between runs.
package validators

import (
	"errors"
	"fmt"
	"sort"
)

// Check validates a single config value. key is the config field being
// checked and is used in the failure message.
type Check func(value any, key string) error

// Factory builds a Check from the arguments of a parametrized spec.
type Factory func(args map[string]any) (Check, error)

// Kind tags a registry entry.
type Kind int

const (
	// KindCheck entries are invoked directly.
	KindCheck Kind = iota
	// KindFactory entries are invoked with arguments to obtain a check.
	KindFactory
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindCheck:
		return "check"
	case KindFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// Entry is one named validator.
type Entry struct {
	Name        string
	Kind        Kind
	Check       Check
	Factory     Factory
	Description string
	// Params lists the argument names a factory accepts, for help output.
	Params []string
	// Builtin is true for entries shipped with envinit.
	Builtin bool
}

var (
	// ErrUnknownValidator is returned when a spec names a validator that is
	// neither built in nor registered.
	ErrUnknownValidator = errors.New("unknown validator")
	// ErrInvalidArguments is returned when a factory rejects its arguments.
	ErrInvalidArguments = errors.New("invalid validator arguments")
	// ErrInvalidSpec is returned for specs that are not a name, a
	// parametrized mapping or an inline check.
	ErrInvalidSpec = errors.New("invalid validator specification")
)

// ResolveError reports why a spec could not be turned into a check. It
// signals a schema authoring problem, not a bad config value.
type ResolveError struct {
	Name   string
	Raw    any
	Reason error
}

func (e *ResolveError) Error() string {
	switch {
	case errors.Is(e.Reason, ErrUnknownValidator):
		return fmt.Sprintf("unknown validator '%s'", e.Name)
	case errors.Is(e.Reason, ErrInvalidSpec):
		return fmt.Sprintf("invalid validator specification: %v", e.Raw)
	default:
		return fmt.Sprintf("cannot initialize validator '%s': %v", e.Name, e.Reason)
	}
}

func (e *ResolveError) Unwrap() error {
	return e.Reason
}

// Registry resolves validator names. The zero value and a nil *Registry
// both resolve built-ins only.
type Registry struct {
	custom map[string]Entry
}

// NewRegistry creates an empty custom registry layered over the built-ins.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Entry)}
}

// Register adds or replaces a custom check. A custom entry shadows a
// built-in with the same name.
func (r *Registry) Register(name string, check Check) {
	r.set(Entry{Name: name, Kind: KindCheck, Check: check})
}

// RegisterFactory adds or replaces a custom factory.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.set(Entry{Name: name, Kind: KindFactory, Factory: factory})
}

// RegisterEntry adds or replaces a fully described custom entry.
func (r *Registry) RegisterEntry(entry Entry) {
	entry.Builtin = false
	r.set(entry)
}

func (r *Registry) set(entry Entry) {
	if r.custom == nil {
		r.custom = make(map[string]Entry)
	}
	r.custom[entry.Name] = entry
}

// Lookup finds an entry by name, preferring custom entries.
func (r *Registry) Lookup(name string) (Entry, bool) {
	if r != nil {
		if entry, ok := r.custom[name]; ok {
			return entry, true
		}
	}
	entry, ok := builtins[name]
	return entry, ok
}

// Has reports whether name resolves.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Entries returns every resolvable entry sorted by name. Shadowed built-ins
// are reported once, as the custom entry that wins.
func (r *Registry) Entries() []Entry {
	merged := make(map[string]Entry, len(builtins))
	for name, entry := range builtins {
		merged[name] = entry
	}
	if r != nil {
		for name, entry := range r.custom {
			merged[name] = entry
		}
	}

	entries := make([]Entry, 0, len(merged))
	for _, entry := range merged {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Clone returns a registry with a copy of the custom entries.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	if r == nil {
		return clone
	}
	for name, entry := range r.custom {
		clone.custom[name] = entry
	}
	return clone
}

// Resolve turns a spec into an executable check.
func (r *Registry) Resolve(spec Spec) (Check, error) {
	switch spec.Kind {
	case SpecInline:
		if spec.Inline == nil {
			return nil, &ResolveError{Name: spec.Label(), Raw: spec.Raw, Reason: ErrInvalidSpec}
		}
		return spec.Inline, nil
	case SpecNamed, SpecParametrized:
		return r.resolveByName(spec)
	default:
		return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: ErrInvalidSpec}
	}
}

func (r *Registry) resolveByName(spec Spec) (Check, error) {
	entry, ok := r.Lookup(spec.Name)
	if !ok {
		return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: ErrUnknownValidator}
	}

	switch entry.Kind {
	case KindCheck:
		if len(spec.Args) > 0 {
			return nil, &ResolveError{
				Name:   spec.Name,
				Raw:    spec.Raw,
				Reason: fmt.Errorf("%w: validator takes no arguments, got %s", ErrInvalidArguments, argNames(spec.Args)),
			}
		}
		if entry.Check == nil {
			return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: ErrInvalidSpec}
		}
		return entry.Check, nil
	case KindFactory:
		if entry.Factory == nil {
			return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: ErrInvalidSpec}
		}
		check, err := entry.Factory(spec.Args)
		if err != nil {
			if !errors.Is(err, ErrInvalidArguments) {
				err = fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
			return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: err}
		}
		return check, nil
	default:
		return nil, &ResolveError{Name: spec.Name, Raw: spec.Raw, Reason: ErrInvalidSpec}
	}
}

func argNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
