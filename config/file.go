package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the config file at path on top of DefaultConfig. Files ending in
// .yaml or .yml are YAML, everything else is JSON.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	bb, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(bb, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.FilePath = path
	return cfg, nil
}

func Decode(bb []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(bb, cfg)
	default:
		return json.Unmarshal(bb, cfg)
	}
}

// Write stores cfg at path in the format its extension asks for.
func Write(path string, cfg Config) error {
	var (
		bb  []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		bb, err = yaml.Marshal(cfg)
	default:
		bb, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, bb, 0o644)
}
