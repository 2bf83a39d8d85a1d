package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/realDragonium/mcwatch/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "mcwatch.json", `{
		"serverName": "Survival",
		"host": "mc.example.org",
		"port": 25566,
		"checkInterval": "30s",
		"notify": {"onebot": {"url": "http://127.0.0.1:5700", "groupID": "123456"}}
	}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	expected := config.DefaultConfig()
	expected.FilePath = path
	expected.ServerName = "Survival"
	expected.Host = "mc.example.org"
	expected.Port = 25566
	expected.CheckInterval = "30s"
	expected.Notify.OneBot.URL = "http://127.0.0.1:5700"
	expected.Notify.OneBot.GroupID = "123456"
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "mcwatch.yaml", `
host: play.example.org
source: http
readTimeout: 3s
notify:
  log: false
  websocket: true
  mqtt:
    broker: tcp://localhost:1883
    topic: servers/survival
logging:
  level: debug
  console: false
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	if cfg.Host != "play.example.org" || cfg.Source != config.HTTPSource || cfg.ReadTimeout != "3s" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Port != 25565 || cfg.ConnectTimeout != "5s" {
		t.Errorf("defaults were not kept: port %d connectTimeout %s", cfg.Port, cfg.ConnectTimeout)
	}
	if cfg.Notify.Log || !cfg.Notify.WebSocket || cfg.Notify.MQTT.Topic != "servers/survival" {
		t.Errorf("unexpected notify config: %+v", cfg.Notify)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Console {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := config.Load(writeFile(t, "bad.yml", ":::not yaml")); err == nil {
		t.Error("expected an error for invalid yaml")
	}
	if _, err := config.Load(writeFile(t, "bad.json", `{"port": "twenty"}`)); err == nil {
		t.Error("expected an error for invalid json")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.json", "cfg.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := validConfig()
			cfg.Notify.Webhook.URL = "https://example.org/hook"
			if err := config.Write(path, cfg); err != nil {
				t.Fatal(err)
			}
			loaded, err := config.Load(path)
			if err != nil {
				t.Fatal(err)
			}
			cfg.FilePath = path
			if diff := cmp.Diff(cfg, loaded); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMonitor(t *testing.T) {
	cfg := validConfig()
	cfg.CheckInterval = "1m"
	cfg.QueryCooldown = ""
	mcfg, err := cfg.Monitor()
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	expected := config.MonitorConfig{
		ServerName:     "Minecraft server",
		Host:           "mc.example.org",
		Port:           25565,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		Interval:       time.Minute,
		PollTimeout:    15 * time.Second,
		ErrorBackoff:   5 * time.Second,
		StartDelay:     5 * time.Second,
		QuoteTimeout:   2 * time.Second,
	}
	if diff := cmp.Diff(expected, mcfg); diff != "" {
		t.Errorf("monitor config mismatch (-want +got):\n%s", diff)
	}
}
