// Package scaffold creates the folders a validated config names. Every key
// ending in "_dir" is a folder inside the project root.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/envinit/internal/logging"
	"github.com/spf13/afero"
)

// DirSuffix marks config keys naming a folder.
const DirSuffix = "_dir"

// ErrOutsideRoot is returned for a folder that would be created outside the
// project root.
var ErrOutsideRoot = errors.New("refusing to create folder outside of project root")

// Folder is one *_dir entry resolved against the root.
type Folder struct {
	Key  string
	Path string
}

// Result lists what InitFolders did.
type Result struct {
	Root     string
	Created  []Folder
	Existing []Folder
}

// Initializer creates folders on a filesystem.
type Initializer struct {
	Fs     afero.Fs
	Logger logging.Logger
}

// New returns an Initializer over fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, log logging.Logger) *Initializer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Initializer{Fs: fs, Logger: log}
}

// Folders resolves every *_dir value of values against root, in key order.
// Nil values are skipped. Nothing is created; all paths are checked first so
// a single bad entry leaves the filesystem untouched.
func Folders(values map[string]any, root string) ([]Folder, error) {
	root = filepath.Clean(root)

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.HasSuffix(k, DirSuffix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	folders := make([]Folder, 0, len(keys))
	for _, key := range keys {
		raw := values[key]
		if raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a path string, got %T", key, raw)
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%s is empty", key)
		}

		path := filepath.Clean(expandHome(s))
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if !within(root, path) {
			return nil, fmt.Errorf("%w: %s='%s' resolves to '%s', root is '%s'", ErrOutsideRoot, key, s, path, root)
		}
		folders = append(folders, Folder{Key: key, Path: path})
	}
	return folders, nil
}

// InitFolders creates every *_dir folder of values under root.
func (i *Initializer) InitFolders(values map[string]any, root string) (*Result, error) {
	folders, err := Folders(values, root)
	if err != nil {
		return nil, err
	}

	result := &Result{Root: filepath.Clean(root)}
	i.Logger.Debug("project root", "path", result.Root)
	for _, f := range folders {
		info, err := i.Fs.Stat(f.Path)
		switch {
		case err == nil && info.IsDir():
			i.Logger.Debug("folder exists", "key", f.Key, "path", f.Path)
			result.Existing = append(result.Existing, f)
			continue
		case err == nil:
			return result, fmt.Errorf("%s: '%s' exists and is not a directory", f.Key, f.Path)
		case !os.IsNotExist(err):
			return result, fmt.Errorf("%s: checking '%s': %w", f.Key, f.Path, err)
		}

		if err := i.Fs.MkdirAll(f.Path, 0o755); err != nil {
			return result, fmt.Errorf("%s: creating '%s': %w", f.Key, f.Path, err)
		}
		i.Logger.Info("created folder", "key", f.Key, "path", f.Path)
		result.Created = append(result.Created, f)
	}
	return result, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
