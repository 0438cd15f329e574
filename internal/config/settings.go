package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds per-user defaults for fleetgen flags.
type Settings struct {
	// Template is the skeleton used when --template is not given.
	Template string `yaml:"template"`
	// Output is the document path used when --output is not given.
	Output string `yaml:"output"`
	// PostGenerate are shell commands run after master.cfg is written.
	PostGenerate []string `yaml:"post_generate"`
}

// DefaultConfigDir returns the default settings directory, respecting XDG_CONFIG_HOME.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fleetgen")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "fleetgen")
	}

	return filepath.Join(home, ".config", "fleetgen")
}

// DefaultSettingsPath returns the settings file inside DefaultConfigDir.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultConfigDir(), "settings.yaml")
}

// LoadSettings reads user settings from the given path.
// If the file doesn't exist, it returns zero-value settings (no error).
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}

		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return &s, nil
}

// Apply fills empty flag values from the settings.
func (s *Settings) Apply(template, output string) (string, string) {
	if template == "" {
		template = s.Template
	}

	if output == "" {
		output = s.Output
	}

	return template, output
}
