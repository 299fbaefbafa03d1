package errors

import "fmt"

// ConfigFileNotFound is returned when the config file is missing.
func ConfigFileNotFound(path string) *CLIError {
	return &CLIError{
		Category: Prerequisite,
		Message:  fmt.Sprintf("config file not found: %s", path),
		Remediation: []string{
			"Check the path passed to the command",
			"Create a template with: envinit generate",
		},
	}
}

// SchemaFileNotFound is returned when the schema file is missing.
func SchemaFileNotFound(path string) *CLIError {
	return &CLIError{
		Category: Prerequisite,
		Message:  fmt.Sprintf("schema file not found: %s", path),
		Remediation: []string{
			"Pass the schema with --schema <path>",
			"Or set schema_path in .envinit.yml",
		},
	}
}

// ConfigParseError is returned when a config file cannot be parsed.
func ConfigParseError(path string, err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("failed to parse %s: %v", path, err),
		Remediation: []string{
			"Check the YAML syntax at the reported line",
			"The top level must be a mapping of keys to values",
		},
		Err: err,
	}
}

// ConfigInvalid is returned when a config fails validation. The details are
// printed separately.
func ConfigInvalid(path string, count int, err error) *CLIError {
	noun := "problem"
	if count != 1 {
		noun = "problems"
	}
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("%s failed validation with %d %s", path, count, noun),
		Remediation: []string{
			"Fix every field listed above and run the command again",
			"Run with --lint for one line per problem",
		},
		Err: err,
	}
}

// InvalidSchema is returned when a schema fails its self-check.
func InvalidSchema(err error) *CLIError {
	return &CLIError{
		Category: Schema,
		Message:  err.Error(),
		Remediation: []string{
			"Every field needs a known 'type' and an explicit 'required'",
			"List registered validators with: envinit schema validators",
		},
		Err: err,
	}
}

// AuthFileError is returned when an *_auth_path file cannot be loaded.
func AuthFileError(err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  err.Error(),
		Remediation: []string{
			"Relative auth paths resolve against the config file's directory",
			"The auth file must be a YAML mapping of names to values",
		},
		Err: err,
	}
}

// InvalidFlagCombination is returned for flags that cannot be used together.
func InvalidFlagCombination(flags, reason string) *CLIError {
	return &CLIError{
		Category:    Argument,
		Message:     fmt.Sprintf("invalid flag combination %s: %s", flags, reason),
		Remediation: []string{"Run the command with --help to see valid flags"},
	}
}

// DirectoryNotFound is returned when a directory argument does not exist.
func DirectoryNotFound(path string) *CLIError {
	return &CLIError{
		Category:    Prerequisite,
		Message:     fmt.Sprintf("directory not found: %s", path),
		Remediation: []string{"Create the directory or pass an existing one"},
	}
}

// FileNotWritable is returned when an output file would be clobbered or
// cannot be written.
func FileNotWritable(path string) *CLIError {
	return &CLIError{
		Category: Prerequisite,
		Message:  fmt.Sprintf("cannot write file: %s", path),
		Remediation: []string{
			"Check the directory permissions",
			"Use --force to overwrite an existing file",
		},
	}
}

// FolderInitFailed is returned when init-folders cannot create a folder.
func FolderInitFailed(err error) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  err.Error(),
		Remediation: []string{
			"Every *_dir value must stay inside the config file's directory",
			"Remove files that block a folder path",
		},
		Err: err,
	}
}

// MetricsUnavailable is returned when the metrics database cannot be used.
func MetricsUnavailable(path string, err error) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  fmt.Sprintf("metrics database %s is unavailable: %v", path, err),
		Remediation: []string{
			"Set metrics_db in .envinit.yml to a writable location",
			"Raise lock_retries if several scripts write at once",
		},
		Err: err,
	}
}

// MissingCommand is returned when run is given nothing to execute.
func MissingCommand() *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  "no command given",
		Usage:    "envinit run <config> --name <script> -- <command> [args...]",
		Remediation: []string{
			"Put the command after -- so its flags are not parsed by envinit",
		},
	}
}
