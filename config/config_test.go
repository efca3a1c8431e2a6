package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "matchd"
  ack_topic: "driver/+/ack"
  request_topic: "match/requests"
matching:
  eta_weight: 0.35
  rating_weight: 0.25
  reliability_weight: 0.15
  fairness_weight: 0.15
  vehicle_weight: 0.10
  max_match_distance_km: 40
  max_results: 3
fairness:
  window_hours: 12
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
redis:
  enabled: true
  addr: "localhost:6380"
logging:
  path: "test-matches.log"
api:
  enabled: true
  token: "secret"
ack_timeout_seconds: 3
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "matchd"},
		{"ack_topic", cfg.MQTT.AckTopic, "driver/+/ack"},
		{"request_topic", cfg.MQTT.RequestTopic, "match/requests"},
		{"eta_weight", cfg.Matching.EtaWeight, 0.35},
		{"max_match_distance_km", cfg.Matching.MaxMatchDistanceKm, 40.0},
		{"max_results", cfg.Matching.MaxResults, 3},
		{"max_eta_minutes_default", cfg.Matching.MaxEtaMinutes, 30},
		{"window_hours", cfg.Fairness.WindowHours, 12},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"redis_enabled", cfg.Redis.Enabled, true},
		{"redis_addr", cfg.Redis.Addr, "localhost:6380"},
		{"log_path", cfg.Logging.Path, "test-matches.log"},
		{"log_backend_default", cfg.Logging.Backend, "jsonl"},
		{"api_enabled", cfg.API.Enabled, true},
		{"api_addr_default", cfg.API.Addr, ":8085"},
		{"api_token", cfg.API.Token, "secret"},
		{"ack_timeout", cfg.AckTimeoutSeconds, 3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	if cfg.Pricing.TierMultipliers["GOLD"] != 2.0 {
		t.Errorf("pricing defaults not applied: %+v", cfg.Pricing)
	}
}

func TestLoadRejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `matching:
  eta_weight: 0.9
  rating_weight: 0.25
  reliability_weight: 0.15
  fairness_weight: 0.15
  vehicle_weight: 0.10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("weights not summing to 1.0 must be rejected at load time")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("mqtt:\n  broker: \"tcp://file:1883\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MATCHD_MQTT__BROKER", "tcp://env:1883")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://env:1883" {
		t.Fatalf("env override not applied: %s", cfg.MQTT.Broker)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("unsupported extension must error")
	}
}
