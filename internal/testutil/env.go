package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// settingsEnvPrefix is read by the settings loader.
const settingsEnvPrefix = "ENVINIT_"

// IsolateEnv points HOME and XDG_CONFIG_HOME at a temp directory and unsets
// every ENVINIT_* variable so settings come from defaults and the files a
// test writes. Tests calling it cannot run in parallel.
func IsolateEnv(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, settingsEnvPrefix) {
			continue
		}
		// Setenv registers the restore; an empty value would still be read
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
