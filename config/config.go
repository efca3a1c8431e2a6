// Package config loads and validates the full service configuration from a
// yaml or json file, with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ridewire/matchd/core/fairness"
	"github.com/ridewire/matchd/core/matching"
	"github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/core/pricing"
	"github.com/ridewire/matchd/infra/mqtt"
	"github.com/ridewire/matchd/infra/registry"
)

type Config struct {
	MQTT     mqtt.Config          `json:"mqtt"`
	Matching matching.Config      `json:"matching"`
	Fairness fairness.Config      `json:"fairness"`
	Pricing  pricing.Config       `json:"pricing"`
	Metrics  metrics.Config       `json:"metrics"`
	Redis    registry.RedisConfig `json:"redis"`
	Logging  LoggingConfig        `json:"logging"`
	API      APIConfig            `json:"api"`

	// AckTimeoutSeconds bounds the wait for a driver acknowledgment.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	c.Matching.SetDefaults()
	c.Fairness.SetDefaults()
	c.Pricing.SetDefaults()
	c.Metrics.SetDefaults()
	c.Redis.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 5
	}
}

// Validate checks every section eagerly so bad weights or tables are caught
// at startup, not during the first request.
func (c Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	if err := c.Fairness.Validate(); err != nil {
		return err
	}
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.AckTimeoutSeconds < 0 {
		return fmt.Errorf("ack_timeout_seconds must not be negative")
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MATCHD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "matchd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
