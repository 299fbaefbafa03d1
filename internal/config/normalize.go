package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ariel-frischer/envinit/internal/schema"
)

// NormalizeKey trims key, replaces spaces with underscores and lowercases it.
func NormalizeKey(key string) string {
	return schema.NormalizeKey(key)
}

// Collision is one normalized key produced by more than one original key.
type Collision struct {
	Key       string
	Originals []string
}

// CollisionError reports every normalized key that more than one raw key
// maps to. The input is ambiguous, so nothing is picked.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		quoted := make([]string, len(c.Originals))
		for j, o := range c.Originals {
			quoted[j] = fmt.Sprintf("'%s'", o)
		}
		parts[i] = fmt.Sprintf("'%s' from %s", c.Key, strings.Join(quoted, ", "))
	}
	return "config keys collide after normalization: " + strings.Join(parts, "; ")
}

// NormalizeKeys returns a copy of raw with normalized top-level keys. Values
// are not touched. Colliding keys yield a *CollisionError.
func NormalizeKeys(raw map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(raw))
	sources := make(map[string][]string, len(raw))
	for _, k := range keys {
		norm := NormalizeKey(k)
		sources[norm] = append(sources[norm], k)
		out[norm] = raw[k]
	}

	var collisions []Collision
	for _, norm := range sortedKeys(sources) {
		if originals := sources[norm]; len(originals) > 1 {
			collisions = append(collisions, Collision{Key: norm, Originals: originals})
		}
	}
	if len(collisions) > 0 {
		return nil, &CollisionError{Collisions: collisions}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
