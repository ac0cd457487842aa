// Package config loads optional project settings from the plugin directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"symbol-exporter.yml", "symbol-exporter.yaml"}

// ProjectConfig holds settings that would otherwise be passed as flags.
// Flags win over file values.
type ProjectConfig struct {
	FileURL   string `yaml:"fileUrl,omitempty"`
	OutputDir string `yaml:"outputDir,omitempty"`
	Listen    string `yaml:"listen,omitempty"`
	Report    string `yaml:"report,omitempty"`
}

// Load reads the first config file found in dir. A missing file yields a
// zero-value config, not an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
