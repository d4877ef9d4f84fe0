package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the full host configuration. Values come from an optional
// YAML file overlaid by environment variables; env wins.
type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	// WagerDenom is the single settlement currency all stakes must use.
	WagerDenom string `yaml:"wager_denom"`
}

const defaultDenom = "uscrt"

// Load reads WAGERD_CONFIG (YAML, optional) and then the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr: ":8080",
		WagerDenom: defaultDenom,
	}

	if path := strings.TrimSpace(os.Getenv("WAGERD_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WAGER_DENOM")); v != "" {
		cfg.WagerDenom = v
	}

	if cfg.ListenAddr == "" {
		return nil, errors.New("LISTEN_ADDR is required")
	}
	if cfg.WagerDenom == "" {
		return nil, errors.New("WAGER_DENOM is required")
	}

	return cfg, nil
}
