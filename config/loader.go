package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// defaultPaths are tried in turn when no explicit path is given.
var defaultPaths = []string{"config.yml", "config.yaml"}

// Load reads and validates an AppConfig from path. If path is empty, it
// tries each of defaultPaths in turn.
func Load(path string) (*AppConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	applyDefaults(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		return data, nil
	}
	var lastErr error
	for _, p := range defaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("config: no config file found in %v: %w", defaultPaths, lastErr)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.QuietRouteMaxSlowdownPc == 0 {
		cfg.QuietRouteMaxSlowdownPc = DefaultQuietRouteMaxSlowdownPc
	}
	if cfg.QuietRouteMinQuietnessPc == 0 {
		cfg.QuietRouteMinQuietnessPc = DefaultQuietRouteMinQuietnessPc
	}
	if cfg.QuietRouteMaxNPaths == 0 {
		cfg.QuietRouteMaxNPaths = DefaultQuietRouteMaxNPaths
	}
}
