package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the external command that evaluates expressions.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	Timeout     string            `yaml:"timeout" json:"timeout"`
}

// LoadConfig reads an evaluator configuration file (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read evaluator config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if cfg.Command == "" {
		return cfg, fmt.Errorf("evaluator config %s: command is required", path)
	}
	return cfg, nil
}

// FromConfig builds an Evaluator from a loaded configuration.
func FromConfig(cfg Config) (*Evaluator, error) {
	opts := []Option{WithArgs(cfg.Args...), WithBaseDir(cfg.Dir), WithEnv(cfg.Environment)}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
		opts = append(opts, WithTimeout(d))
	}
	return New(cfg.Command, opts...), nil
}
