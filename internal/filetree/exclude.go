package filetree

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Exclusions decides which entries a tree leaves out.
type Exclusions struct {
	Prefixes  []string `yaml:"prefixes"`
	Suffixes  []string `yaml:"suffixes"`
	FileTypes []string `yaml:"filetypes"`
	// Folders are exact entry names, matched for files too (e.g. .DS_Store).
	Folders []string `yaml:"folders"`
	// Patterns are doublestar globs matched against the slash-separated
	// path relative to the target and against the entry name.
	Patterns []string `yaml:"patterns"`
}

// DefaultExclusions skips generated output, caches and version control.
func DefaultExclusions() Exclusions {
	return Exclusions{
		Prefixes:  []string{"generated_config_"},
		Suffixes:  []string{".swp", ".egg-info"},
		FileTypes: []string{"pyc", "log"},
		Folders: []string{
			".git", "venv", "__pycache__", "logs", ".pytest_cache",
			"output", "archive", ".DS_Store", "build",
		},
	}
}

// Excluded reports whether the entry at rel (slash-separated, relative to
// the tree root) is left out.
func (e Exclusions) Excluded(rel string) bool {
	name := path.Base(rel)
	for _, p := range e.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range e.Suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	if ext := path.Ext(name); ext != "" {
		for _, ft := range e.FileTypes {
			if strings.TrimPrefix(ft, ".") == ext[1:] {
				return true
			}
		}
	}
	for _, f := range e.Folders {
		if name == f {
			return true
		}
	}
	for _, pattern := range e.Patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (e Exclusions) sections() []struct {
	title  string
	values []string
} {
	return []struct {
		title  string
		values []string
	}{
		{"Prefixes", e.Prefixes},
		{"Suffixes", e.Suffixes},
		{"Filetypes", e.FileTypes},
		{"Folders", e.Folders},
		{"Patterns", e.Patterns},
	}
}
