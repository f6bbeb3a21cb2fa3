package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Load reads a ledgerctl config file from path. The file is always
// parsed as TOML, whatever its extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// WriteDefault creates a new config file at path with default values,
// using storePath as the snapshot location. It refuses to overwrite an
// existing file.
func WriteDefault(path, storePath string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := Default(storePath)
	return Save(path, cfg)
}

// Save writes cfg to path as TOML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Type != "" && cfg.Type != "ledgerctl" {
		return fmt.Errorf("unrecognized config type %q", cfg.Type)
	}
	if cfg.StorePath == "" {
		return fmt.Errorf("store_path is required")
	}
	if cfg.GC.MaxVersions <= 0 {
		return fmt.Errorf("gc.max_versions must be positive, got %d", cfg.GC.MaxVersions)
	}
	return nil
}
