package matching

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.EtaWeight != 0.35 || cfg.MaxResults != 5 || cfg.MaxEtaMinutes != 30 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaulted config must validate: %v", err)
	}
}

func TestSetDefaultsKeepsExplicitWeights(t *testing.T) {
	cfg := Config{EtaWeight: 0.5, RatingWeight: 0.5}
	cfg.SetDefaults()
	if cfg.EtaWeight != 0.5 || cfg.FairnessWeight != 0 {
		t.Fatalf("explicit weights must not be overwritten: %+v", cfg)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"weights off by too much", func(c *Config) { c.EtaWeight = 0.36 }, "sum to 1.0"},
		{"negative weight", func(c *Config) { c.EtaWeight = -0.1; c.RatingWeight = 0.7 }, "negative"},
		{"zero distance", func(c *Config) { c.MaxMatchDistanceKm = -1 }, "max_match_distance_km"},
		{"zero eta ceiling", func(c *Config) { c.MaxEtaMinutes = -5 }, "max_eta_minutes"},
		{"zero speed", func(c *Config) { c.AverageSpeedKmh = -10 }, "average_speed_kmh"},
		{"zero results", func(c *Config) { c.MaxResults = -1 }, "max_results"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateToleratesFloatNoise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EtaWeight = 0.35 + 1e-12
	if err := cfg.Validate(); err != nil {
		t.Fatalf("tiny float noise must pass validation: %v", err)
	}
}
