package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config maps friendly bus names to bus numbers and picks a default
// transport, so commands can say --bus sensors instead of --bus 2.
type Config struct {
	Transport string         `yaml:"transport"`
	Buses     map[string]int `yaml:"buses"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "i2cbus.yaml")
}

// loadConfig reads the YAML config at path (or the default location when
// path is empty). A missing file yields an empty config, not an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath()
	}
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveBus turns a numeric string or a configured alias into a bus number.
func (cfg *Config) ResolveBus(name string) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		return n, nil
	}
	if n, ok := cfg.Buses[name]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("unknown bus %q", name)
}
