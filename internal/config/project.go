package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the per-workspace configuration file.
const ProjectFile = ".codefsm.yaml"

// ProjectConfig represents a workspace-level .codefsm.yaml file. Non-empty
// fields override the user config.
type ProjectConfig struct {
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MaxFileSize int64    `yaml:"max_file_size"`
	Focus       string   `yaml:"focus"`
}

// LoadProjectConfig reads and parses .codefsm.yaml from the given directory.
// Returns nil if the file does not exist or is empty.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectFile, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var pc ProjectConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}
	if pc.MaxFileSize < 0 {
		return nil, fmt.Errorf("%s: max_file_size must not be negative", ProjectFile)
	}
	return &pc, nil
}

// Apply overlays the project settings onto the scan config.
func (pc *ProjectConfig) Apply(sc *ScanConfig) {
	if pc == nil {
		return
	}
	if len(pc.Include) > 0 {
		sc.Include = pc.Include
	}
	if len(pc.Exclude) > 0 {
		sc.Exclude = pc.Exclude
	}
	if pc.MaxFileSize > 0 {
		sc.MaxFileSize = pc.MaxFileSize
	}
}
