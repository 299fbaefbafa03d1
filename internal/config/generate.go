package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/envinit/internal/schema"
	"gopkg.in/yaml.v3"
)

// TemplateTimestamp is the UTC timestamp layout in generated template names.
const TemplateTimestamp = "20060102_150405"

// ErrTemplateExists is returned when a template would overwrite a file.
var ErrTemplateExists = errors.New("template already exists")

// Template renders a config template for s. Each key is shown with its
// default, or with <REQUIRED> / <OPTIONAL> when it has none, and carries its
// description and type as a comment.
func Template(s *schema.Schema) ([]byte, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("schema declares no fields")
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, rule := range s.Rules {
		keyNode := &yaml.Node{
			Kind:        yaml.ScalarNode,
			Value:       rule.Key,
			HeadComment: ruleComment(rule),
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(templateValue(rule)); err != nil {
			return nil, fmt.Errorf("encoding default for %s: %w", rule.Key, err)
		}
		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: fmt.Sprintf("Config template for %s.\nReplace every <REQUIRED> value before running.", s.Name),
		Content:     []*yaml.Node{mapping},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling template: %w", err)
	}
	return data, nil
}

func ruleComment(rule schema.FieldRule) string {
	comment := fmt.Sprintf("%s, %s", rule.Type, rule.Required)
	if rule.Description != "" {
		comment = rule.Description + " (" + comment + ")"
	}
	return comment
}

// TemplateName returns the file name a template generated at now gets.
func TemplateName(now time.Time) string {
	return fmt.Sprintf("generated_config_%s.yaml", now.UTC().Format(TemplateTimestamp))
}

// WriteTemplate writes the template for s into dir and returns its path.
// An existing file is only replaced when force is set.
func WriteTemplate(s *schema.Schema, dir string, force bool, now time.Time) (string, error) {
	data, err := Template(s)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, TemplateName(now))
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s (use --force to overwrite)", ErrTemplateExists, path)
	}
	if err := writeAtomically(path, data); err != nil {
		return "", fmt.Errorf("writing template: %w", err)
	}
	return path, nil
}
