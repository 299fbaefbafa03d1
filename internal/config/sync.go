package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ariel-frischer/envinit/internal/schema"
	"gopkg.in/yaml.v3"
)

// SyncResult describes the outcome of a config sync operation.
type SyncResult struct {
	ConfigPath string   // Path to the config file
	Added      []string // Schema keys appended with their default or a placeholder
	Unknown    []string // Keys the schema does not declare
	Removed    []string // Unknown keys removed (only with Prune)
	Preserved  int      // Count of preserved user values
	DryRun     bool
	Changed    bool // True if any changes were made/would be made
}

// SyncOptions configures how config sync behaves.
type SyncOptions struct {
	DryRun bool // Preview changes without writing
	Prune  bool // Remove keys the schema does not declare
}

// extractUserKeys returns the normalized top-level keys of a YAML document.
func extractUserKeys(node *yaml.Node) []string {
	mapping := node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		mapping = node.Content[0]
	}
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, NormalizeKey(mapping.Content[i].Value))
	}
	return keys
}

// findMissingKeys returns schema keys absent from the config, in schema order.
func findMissingKeys(userKeys []string, s *schema.Schema) []string {
	userSet := make(map[string]bool, len(userKeys))
	for _, k := range userKeys {
		userSet[k] = true
	}

	var missing []string
	for _, key := range s.Keys() {
		if !userSet[key] {
			missing = append(missing, key)
		}
	}
	return missing
}

// findUnknownKeys returns config keys the schema does not declare.
func findUnknownKeys(userKeys []string, s *schema.Schema) []string {
	var unknown []string
	for _, userKey := range userKeys {
		if _, exists := s.Rule(userKey); !exists {
			unknown = append(unknown, userKey)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// templateValue is what a template shows for a rule: its default, or a
// placeholder telling the user whether a value is needed.
func templateValue(rule schema.FieldRule) any {
	switch {
	case rule.Default != nil:
		return rule.Default
	case rule.IsRequired():
		return "<REQUIRED>"
	default:
		return "<OPTIONAL>"
	}
}

// generateNewKeysBlock creates a YAML block for missing keys.
func generateNewKeysBlock(missing []string, s *schema.Schema) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n# Added by envinit config sync\n")
	for _, key := range missing {
		rule, _ := s.Rule(key)
		if rule.Description != "" {
			sb.WriteString(fmt.Sprintf("# %s\n", rule.Description))
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", key, formatValue(templateValue(rule))))
	}
	return sb.String()
}

// formatValue formats a value for YAML output.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return `""`
		}
		// Quote strings that might be interpreted as other types
		if strings.ContainsAny(v, ": #[]{}!&*?|'\"\n\\") || InferValue(v) != any(v) {
			return fmt.Sprintf("%q", v)
		}
		return v
	case bool, int, int64, float64:
		return fmt.Sprintf("%v", v)
	case []interface{}:
		if len(v) == 0 {
			return "[]"
		}
		var items []string
		for _, item := range v {
			items = append(items, formatValue(item))
		}
		return fmt.Sprintf("[%s]", strings.Join(items, ", "))
	case map[string]interface{}:
		if len(v) == 0 {
			return "{}"
		}
		var items []string
		for _, k := range sortedKeys(v) {
			items = append(items, fmt.Sprintf("%s: %s", k, formatValue(v[k])))
		}
		return fmt.Sprintf("{%s}", strings.Join(items, ", "))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// removeKeys removes top-level keys (compared normalized) from the document.
func removeKeys(node *yaml.Node, keys []string) {
	if len(keys) == 0 {
		return
	}
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}

	mapping := node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		mapping = node.Content[0]
	}
	var kept []*yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if drop[NormalizeKey(mapping.Content[i].Value)] {
			continue
		}
		kept = append(kept, mapping.Content[i], mapping.Content[i+1])
	}
	mapping.Content = kept
}

// SyncConfig brings a config file in line with a schema. Missing schema keys
// are appended with their default or a placeholder; unknown keys are
// reported and, with Prune, removed. User values are never changed.
func SyncConfig(configPath string, s *schema.Schema, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{
		ConfigPath: configPath,
		DryRun:     opts.DryRun,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := ValidateYAMLSyntaxFromBytes(data, configPath); err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}

	userKeys := extractUserKeys(&root)
	result.Added = findMissingKeys(userKeys, s)
	result.Unknown = findUnknownKeys(userKeys, s)
	if opts.Prune {
		result.Removed = result.Unknown
	}
	result.Preserved = len(userKeys) - len(result.Removed)
	result.Changed = len(result.Added) > 0 || len(result.Removed) > 0

	if opts.DryRun || !result.Changed {
		return result, nil
	}

	removeKeys(&root, result.Removed)

	var content []byte
	if len(root.Content) > 0 && len(root.Content[0].Content) > 0 {
		content, err = yaml.Marshal(&root)
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
	}
	content = append(content, []byte(generateNewKeysBlock(result.Added, s))...)

	if err := writeAtomically(configPath, content); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return result, nil
}
