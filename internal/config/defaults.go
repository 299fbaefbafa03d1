package config

// GetDefaults returns the default settings values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"schema_path":  "schema.yml",
		"metrics_db":   ".envinit/metrics.db",
		"output_dir":   ".",
		"keep_logs":    5,
		"lock_retries": 5,
		"no_color":     false,
		"tree_exclude": []string{".git", "__pycache__", "node_modules"},
	}
}
