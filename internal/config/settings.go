package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings configures the envinit tool itself, not the configs it validates.
type Settings struct {
	SchemaPath  string   `koanf:"schema_path"`
	MetricsDB   string   `koanf:"metrics_db" validate:"required"`
	OutputDir   string   `koanf:"output_dir" validate:"required"`
	KeepLogs    int      `koanf:"keep_logs" validate:"min=0,max=1000"`
	LockRetries int      `koanf:"lock_retries" validate:"min=0,max=50"`
	NoColor     bool     `koanf:"no_color"`
	TreeExclude []string `koanf:"tree_exclude"`
}

// LoadSettings loads settings from defaults, the user file, the project file
// and the environment.
// Priority: Environment variables > Project file > User file > Defaults
func LoadSettings(projectPath string) (*Settings, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	userPath, err := UserConfigPath()
	if err == nil {
		if _, err := os.Stat(userPath); err == nil {
			if err := ValidateYAMLSyntax(userPath); err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(userPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load user settings: %w", err)
			}
		}
	}

	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if _, err := os.Stat(projectPath); err == nil {
		if err := ValidateYAMLSyntax(projectPath); err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(projectPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load project settings: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := k.Load(env.Provider("ENVINIT_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment settings: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}

	s.MetricsDB = expandHomePath(s.MetricsDB)
	s.OutputDir = expandHomePath(s.OutputDir)
	s.SchemaPath = expandHomePath(s.SchemaPath)

	// NO_COLOR is honored as an alias for no_color
	if os.Getenv("NO_COLOR") != "" {
		s.NoColor = true
	}

	return &s, nil
}

// envTransform converts environment variable names to settings keys
// Example: ENVINIT_KEEP_LOGS -> keep_logs
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "ENVINIT_"))
}
