package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "reconcile.yaml"

// Config represents the top-level reconcile.yaml configuration.
type Config struct {
	Pairs   []Pair        `yaml:"pairs"`
	Splits  SplitsConfig  `yaml:"splits"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// Pair is one budget export reconciled against one statement export.
type Pair struct {
	Name      string `yaml:"name"`
	Budget    Source `yaml:"budget"`
	Statement Source `yaml:"statement"`
}

// Source names an export file and the parser that reads it.
type Source struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// SplitsConfig controls split transaction normalization on the budget side.
type SplitsConfig struct {
	Pattern string `yaml:"pattern"` // empty = parser default
	Strict  bool   `yaml:"strict"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig controls the run history CSV.
type HistoryConfig struct {
	// Path of the history CSV; empty disables. A failed write fails the run
	// after the report has been printed.
	Path string `yaml:"path"`
}

// Load reads a reconcile.yaml file from disk. Relative source and history
// paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with one YNAB-vs-Citi pair.
func Default() *Config {
	return &Config{
		Pairs: []Pair{
			{
				Name:      "checking",
				Budget:    Source{Type: "ynab", Path: "ynab.csv"},
				Statement: Source{Type: "citi", Path: "citi.csv"},
			},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks that every pair is complete and uniquely named.
func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return errors.New("config has no pairs")
	}
	seen := make(map[string]bool, len(c.Pairs))
	for i, p := range c.Pairs {
		if p.Name == "" {
			return fmt.Errorf("pair %d: missing name", i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("pair %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
		for side, src := range map[string]Source{"budget": p.Budget, "statement": p.Statement} {
			if src.Type == "" || src.Path == "" {
				return fmt.Errorf("pair %q: %s needs type and path", p.Name, side)
			}
		}
	}
	return nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Pairs {
		c.Pairs[i].Budget.Path = abs(c.Pairs[i].Budget.Path)
		c.Pairs[i].Statement.Path = abs(c.Pairs[i].Statement.Path)
	}
	c.History.Path = abs(c.History.Path)
}
