package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/envinit/internal/validators"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by LoadFile when the schema file does not exist.
var ErrNotFound = errors.New("schema file not found")

// LoadFile reads and parses a schema file. The returned registry holds the
// custom validators the file declares; it is scoped to this schema.
func LoadFile(path string) (*Schema, *validators.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, name)
}

// Parse builds a schema from YAML in two phases: the "validators" section
// is turned into custom registrations, then the ordered "fields" section
// into rules. Authoring problems do not fail the parse; they are reported
// by Check. Only malformed YAML is returned as an error.
//
//	name: example
//	validators:
//	  timeout_range: {base: int_in_range, args: {min_value: 5, max_value: 60}}
//	  env_name: {one_of: [dev, prod]}
//	  ticket: {pattern: '^[A-Z]+-[0-9]+$'}
//	fields:
//	  timeout:
//	    type: integer
//	    required: true
//	    validators: [timeout_range]
func Parse(data []byte, name string) (*Schema, *validators.Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("parsing schema %s: %w", name, err)
	}

	s := New(name)
	reg := validators.NewRegistry()
	if len(root.Content) == 0 {
		return s, reg, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		s.problem("", "schema document must be a mapping")
		return s, reg, nil
	}

	var fields *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, doc.Content[i+1]
		switch key {
		case "name":
			if value.Value != "" {
				s.Name = value.Value
			}
		case "description":
		case "validators":
			parseValidatorDefs(s, reg, value)
		case "fields":
			fields = value
		default:
			s.problem("", "unknown top-level section '%s'", key)
		}
	}

	if fields != nil {
		parseFields(s, fields)
	}
	return s, reg, nil
}

var defKeys = map[string]bool{"base": true, "args": true, "pattern": true, "one_of": true, "description": true}

func parseValidatorDefs(s *Schema, reg *validators.Registry, node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		s.problem("", "'validators' must be a mapping of name to definition")
		return
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var def map[string]any
		if err := node.Content[i+1].Decode(&def); err != nil || def == nil {
			s.problem("", "validator '%s': definition must be a mapping", name)
			continue
		}

		if unknown := unknownKeys(def, defKeys); len(unknown) > 0 {
			s.problem("", "validator '%s': unknown attributes %v", name, unknown)
			continue
		}

		spec, err := defSpec(def)
		if err != nil {
			s.problem("", "validator '%s': %v", name, err)
			continue
		}
		// earlier definitions are visible to later ones
		check, err := reg.Resolve(spec)
		if err != nil {
			s.problem("", "validator '%s': %v", name, err)
			continue
		}

		desc, _ := def["description"].(string)
		if desc == "" {
			desc = spec.String()
		}
		reg.RegisterEntry(validators.Entry{Name: name, Kind: validators.KindCheck, Check: check, Description: desc})
	}
}

func defSpec(def map[string]any) (validators.Spec, error) {
	var forms []string
	for _, form := range []string{"base", "pattern", "one_of"} {
		if _, ok := def[form]; ok {
			forms = append(forms, form)
		}
	}
	if len(forms) != 1 {
		return validators.Spec{}, fmt.Errorf("exactly one of base, pattern or one_of is required, got %v", forms)
	}

	switch forms[0] {
	case "pattern":
		return validators.Parametrized("matches_pattern", map[string]any{"pattern": def["pattern"]}), nil
	case "one_of":
		return validators.Parametrized("one_of", map[string]any{"values": def["one_of"]}), nil
	}

	base, ok := def["base"].(string)
	if !ok || base == "" {
		return validators.Spec{}, fmt.Errorf("'base' must be a validator name")
	}
	if def["args"] == nil {
		return validators.Named(base), nil
	}
	args, ok := def["args"].(map[string]any)
	if !ok {
		return validators.Spec{}, fmt.Errorf("'args' must be a mapping")
	}
	return validators.Parametrized(base, args), nil
}

var ruleKeys = map[string]bool{"type": true, "required": true, "default": true, "validators": true, "description": true}

func parseFields(s *Schema, node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		s.problem("", "'fields' must be a mapping of key to rule")
		return
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var raw map[string]any
		if err := node.Content[i+1].Decode(&raw); err != nil || raw == nil {
			s.problem(key, "rule must be a mapping")
			continue
		}
		s.Add(parseRule(s, key, raw))
	}
}

func parseRule(s *Schema, key string, raw map[string]any) FieldRule {
	rule := FieldRule{Key: key}

	if unknown := unknownKeys(raw, ruleKeys); len(unknown) > 0 {
		s.problem(key, "unknown rule attributes %v", unknown)
	}

	if t, ok := raw["type"]; ok && t != nil {
		rule.Type = Type(fmt.Sprint(t))
	}

	if req, ok := raw["required"]; ok {
		switch v := req.(type) {
		case bool:
			rule.Required = RequirementOptional
			if v {
				rule.Required = RequirementRequired
			}
		default:
			s.problem(key, "'required' must be true or false, got %v", req)
			rule.Required = RequirementOptional
		}
	}

	rule.Default = raw["default"]
	rule.Description, _ = raw["description"].(string)

	switch list := raw["validators"].(type) {
	case nil:
	case []any:
		for _, item := range list {
			rule.Validators = append(rule.Validators, validators.ParseSpec(item))
		}
	default:
		s.problem(key, "'validators' must be a list, got %s", validators.TypeName(list))
	}
	return rule
}

func unknownKeys(m map[string]any, allowed map[string]bool) []string {
	var unknown []string
	for k := range m {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}
