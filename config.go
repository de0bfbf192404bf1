// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.13
//

package gorinex

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tool settings
type Config struct {
	Producer string         `yaml:"producer"`
	LogLevel int            `yaml:"log_level"`
	Hatanaka HatanakaConfig `yaml:"hatanaka"`
}

type HatanakaConfig struct {
	Order   int    `yaml:"order"`   // Maximum differential order
	Version string `yaml:"version"` // CRINEX revision written, empty selects by RINEX revision
}

func DefaultConfig() Config {
	return Config{
		Producer: DefaultProducer.Tag(),
		Hatanaka: HatanakaConfig{Order: DefaultHatanakaOrder},
	}
}

// Defaults overridden by the YAML file
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Hatanaka.Order < 1 {
		return cfg, fmt.Errorf("config %s: hatanaka order must be positive, got %d", path, cfg.Hatanaka.Order)
	}
	switch cfg.Hatanaka.Version {
	case "", "1.0", "3.0":
	default:
		return cfg, fmt.Errorf("config %s: unsupported CRINEX version %q", path, cfg.Hatanaka.Version)
	}
	return cfg, nil
}

func (c Config) ProducerID() Producer {
	if c.Producer == "" {
		return DefaultProducer
	}
	return ParseProducer(c.Producer)
}
