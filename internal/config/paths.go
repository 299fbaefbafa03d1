package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appName           = "envinit"
	settingsFileName  = "config.yml"
	projectConfigFile = ".envinit.yml"
)

// UserConfigDir returns the directory holding the user-level settings file,
// e.g. ~/.config/envinit on Linux. XDG_CONFIG_HOME is honored.
func UserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// UserConfigPath returns the user-level settings file path.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// ProjectConfigPath returns the project-level settings file path, relative
// to the working directory.
func ProjectConfigPath() string {
	return projectConfigFile
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// resolvePath makes path absolute against root unless it already is.
func resolvePath(root, path string) string {
	path = expandHomePath(path)
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}
