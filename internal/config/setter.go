package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ariel-frischer/envinit/internal/schema"
	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned when an empty key path is provided.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key path, "labels.team" -> [labels team].
func ParseKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// SetNestedValue sets value at keyPath under root, a document or mapping
// node. Missing mappings along the path are created, and a scalar in the
// way of a deeper key is replaced by a mapping.
func SetNestedValue(root *yaml.Node, keyPath []string, value any) error {
	node, err := topMapping(root)
	if err != nil {
		return err
	}
	if len(keyPath) == 0 {
		return nil
	}

	last := len(keyPath) - 1
	for _, key := range keyPath[:last] {
		child := entry(node, key)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
		} else if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode}
		}
		node = child
	}

	leaf := scalarFor(value)
	if existing := entry(node, keyPath[last]); existing != nil {
		// keep comments attached to the old value
		leaf.HeadComment, leaf.LineComment, leaf.FootComment = existing.HeadComment, existing.LineComment, existing.FootComment
		*existing = *leaf
		return nil
	}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: keyPath[last]}, leaf)
	return nil
}

// GetNestedValue returns the node at keyPath, or nil when any part of the
// path is missing.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if root == nil || len(keyPath) == 0 {
		return nil
	}
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	for _, key := range keyPath {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil
		}
		node = entry(node, key)
	}
	return node
}

// topMapping returns the mapping a document holds, turning an empty node
// into a document with an empty mapping.
func topMapping(root *yaml.Node) (*yaml.Node, error) {
	switch root.Kind {
	case 0:
		*root = *emptyDocument()
		return root.Content[0], nil
	case yaml.DocumentNode:
		if len(root.Content) > 0 && root.Content[0].Kind == yaml.MappingNode {
			return root.Content[0], nil
		}
	case yaml.MappingNode:
		return root, nil
	}
	return nil, fmt.Errorf("root node must be document or mapping, got %v", root.Kind)
}

// entry finds the value of key in a mapping node. Keys compare normalized so
// "Log Dir" finds log_dir.
func entry(mapping *yaml.Node, key string) *yaml.Node {
	want := NormalizeKey(key)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if NormalizeKey(mapping.Content[i].Value) == want {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// scalarFor encodes value as a tagged scalar. Strings that would read back
// as another type are quoted.
func scalarFor(value any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v := value.(type) {
	case bool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(v)
	case int:
		n.Tag, n.Value = "!!int", strconv.Itoa(v)
	case string:
		n.Tag, n.Value = "!!str", v
		if _, isString := InferValue(v).(string); !isString || v == "" {
			n.Style = yaml.DoubleQuotedStyle
		}
	default:
		n.Value = fmt.Sprint(v)
	}
	return n
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
}

// SetValue sets one key of a config file, typed by the schema rule for its
// top-level key. Keys the schema does not declare are inferred. Comments and
// the order of the other keys are kept. The file is created if missing.
func SetValue(filePath, key, value string, s *schema.Schema) (any, error) {
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return nil, fmt.Errorf("parsing key path: %w", err)
	}
	keyPath[0] = NormalizeKey(keyPath[0])

	t := schema.TypeAny
	if rule, ok := s.Rule(keyPath[0]); ok && len(keyPath) == 1 {
		t = rule.Type
	}
	parsed, err := ParseValue(t, value)
	if err != nil {
		return nil, fmt.Errorf("validating value for %s: %w", key, err)
	}

	root, err := readDocument(filePath)
	if err != nil {
		return nil, err
	}
	if err := SetNestedValue(root, keyPath, parsed); err != nil {
		return nil, fmt.Errorf("setting %s: %w", key, err)
	}
	content, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := writeAtomically(filePath, content); err != nil {
		return nil, fmt.Errorf("writing config file: %w", err)
	}
	return parsed, nil
}

// readDocument parses filePath into a node tree, or returns an empty
// document when the file does not exist or is empty.
func readDocument(filePath string) (*yaml.Node, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := ValidateYAMLSyntaxFromBytes(data, filePath); err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if root.Kind == 0 {
		return emptyDocument(), nil
	}
	return &root, nil
}
