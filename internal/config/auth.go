package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/sensitive"
	"github.com/ariel-frischer/envinit/internal/validators"
)

// AuthPathSuffix marks config keys whose value is a credentials file path.
const AuthPathSuffix = "_auth_path"

// AuthKey is the derived config section holding loaded credentials.
const AuthKey = schema.ReservedKey

// Auth maps a system name to its credentials.
type Auth map[string]map[string]sensitive.Secret

// LoadAuth reads every non-nil *_auth_path value of values as a YAML mapping
// and wraps each entry in a Secret. Relative paths resolve against root.
// The system name is the key without the suffix: qtest_auth_path -> qtest.
func LoadAuth(values map[string]any, root string) (Auth, error) {
	auth := Auth{}
	for _, key := range sortedKeys(values) {
		if !strings.HasSuffix(key, AuthPathSuffix) || values[key] == nil {
			continue
		}
		system := strings.TrimSuffix(key, AuthPathSuffix)
		if system == "" {
			return nil, fmt.Errorf("%w: key '%s' has no system name", ErrAuthFile, key)
		}

		path, ok := values[key].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a path string, got %s", ErrAuthFile, key, validators.TypeName(values[key]))
		}
		path = resolvePath(root, path)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%s): %v", ErrAuthFile, key, path, err)
		}
		entries, err := parseMapping(data, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAuthFile, key, err)
		}

		secrets := make(map[string]sensitive.Secret, len(entries))
		for name, value := range entries {
			secrets[name] = sensitive.New(value)
		}
		auth[system] = secrets
	}
	return auth, nil
}

// Systems returns the system names in sorted order.
func (a Auth) Systems() []string {
	return sortedKeys(a)
}

// Get returns one credential of a system.
func (a Auth) Get(system, name string) (sensitive.Secret, bool) {
	secrets, ok := a[system]
	if !ok {
		return sensitive.Secret{}, false
	}
	secret, ok := secrets[name]
	return secret, ok
}
