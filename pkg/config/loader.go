package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the CONFIG environment variable nor the
// caller names a file.
const DefaultPath = "fitness.yaml"

// Loader handles loading scoring configurations
type Loader struct {
	configPath string
}

// NewLoader creates a new configuration loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		return configPath
	}
	if l.configPath == "" {
		return DefaultPath
	}
	return l.configPath
}

// Load reads and validates the configuration file. Fields missing from the
// file keep their Default values.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Relative dataset paths are resolved against the config file.
	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Dataset.X, &cfg.Dataset.Y, &cfg.Dataset.Weights} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// LoadFromBytes parses and validates configuration data
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the loader's path
func (l *Loader) Save(cfg *Config) error {
	configPath := l.Path()

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
