package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/propspec/pkg/scanner"
)

const defaultConfigPath = ".propspec/config.yaml"

// ProjectConfig holds the contents of .propspec/config.yaml.
type ProjectConfig struct {
	// Include and Exclude are doublestar globs relative to the scan root.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// ExcludeCategories applies when --exclude is not given.
	ExcludeCategories []string `yaml:"exclude_categories"`

	// AllowUntyped also reads plain <script> blocks as JavaScript.
	AllowUntyped bool `yaml:"allow_untyped"`

	CacheSize int `yaml:"cache_size"`
	Workers   int `yaml:"workers"`

	// LogFile receives one JSONL line per MCP tool call.
	LogFile string `yaml:"log_file"`
}

// loadProjectConfig reads the config file at path, or .propspec/config.yaml
// in the current directory when path is empty. A missing default file yields
// an empty config; a missing explicit file is an error.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.ToSlash(path), err)
	}
	if cfg.CacheSize < 0 || cfg.Workers < 0 {
		return nil, fmt.Errorf("parse %s: cache_size and workers must not be negative", filepath.ToSlash(path))
	}
	return &cfg, nil
}

// scanConfig applies the configured globs over the defaults.
func (c *ProjectConfig) scanConfig() scanner.ScanConfig {
	cfg := scanner.DefaultScanConfig()
	if len(c.Include) > 0 {
		cfg.Include = c.Include
	}
	if len(c.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, c.Exclude...)
	}
	cfg.Workers = c.Workers
	return cfg
}
