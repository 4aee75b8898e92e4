package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration, stored in ~/.redmine-tracker/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Redmine RedmineConfig `json:"redmine"`
}

// RedmineConfig holds the connection and submission settings.
type RedmineConfig struct {
	// Endpoint is the base URL of the Redmine server, e.g. "https://redmine.example.com".
	Endpoint string `json:"endpoint"`
	// APIKey is the per-user API access key (My account → API access key).
	APIKey string `json:"api_key"`
	// DefaultActivity is the activity name to classify submitted time entries
	// with. Empty means the server's default activity.
	DefaultActivity string `json:"default_activity"`
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// redmine-tracker configuration – ~/.redmine-tracker/config.json
//
// Fill in endpoint and api_key before first use.
{
  "redmine": {
    // Base URL of your Redmine server, without a trailing slash.
    "endpoint": "",

    // Your personal API access key.
    // Find it under "My account" → "API access key" in Redmine.
    "api_key": "",

    // Activity name used to classify submitted time entries,
    // e.g. "Development". Leave empty to use the server default.
    // Can be overridden per run with: rt plan --activity <name>
    "default_activity": ""
  }
}
`

// configFilePath returns the path to ~/.redmine-tracker/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".redmine-tracker", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.redmine-tracker/config.json, creating it with an annotated
// template on first run. Lines starting with // are treated as comments and
// stripped before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// Validate reports whether the config is complete enough to talk to Redmine.
func (c Config) Validate() error {
	path, err := configFilePath()
	if err != nil {
		path = "~/.redmine-tracker/config.json"
	}
	if c.Redmine.Endpoint == "" {
		return fmt.Errorf("redmine endpoint is not set; edit %s", path)
	}
	if c.Redmine.APIKey == "" {
		return fmt.Errorf("redmine api_key is not set; edit %s", path)
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
