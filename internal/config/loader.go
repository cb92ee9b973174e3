package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load loads the server configuration.
// Search order: customPath -> ./poker.yaml -> built-in defaults.
// Fields missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try local config file
	if data, err := os.ReadFile("poker.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config poker.yaml: %w", err)
		}
		return cfg, nil
	}

	return cfg, nil
}
