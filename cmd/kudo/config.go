// ABOUTME: CLI configuration from a YAML config file and KUDO_* environment variables.
// ABOUTME: Enforces security constraint: non-loopback binds require explicit opt-in.
package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNonLoopbackBind rejects accidental exposure of the local board viewer.
var ErrNonLoopbackBind = errors.New(
	"KUDO_BIND is a non-loopback address but KUDO_ALLOW_REMOTE is not true; set KUDO_ALLOW_REMOTE=true to allow remote access",
)

// kudoConfig holds CLI configuration. Precedence: flags > environment > config file.
type kudoConfig struct {
	APIURL        string `yaml:"api_url"`
	Bind          string `yaml:"bind"`
	AllowRemote   bool   `yaml:"allow_remote"`
	DefaultAuthor string `yaml:"default_author"`
	DataDir       string `yaml:"data_dir"`
}

// loadConfig builds the effective configuration: defaults, then the YAML
// config file if present, then KUDO_* environment variables.
func loadConfig() (*kudoConfig, error) {
	cfg := &kudoConfig{
		APIURL: "http://127.0.0.1:3000",
		Bind:   "127.0.0.1:8467",
	}

	if configDir, err := defaultConfigDir(); err == nil {
		path := filepath.Join(configDir, "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("KUDO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("KUDO_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("KUDO_ALLOW_REMOTE"); v == "true" || v == "1" || v == "yes" {
		cfg.AllowRemote = true
	}
	if v := os.Getenv("KUDO_AUTHOR"); v != "" {
		cfg.DefaultAuthor = v
	}
	if v := os.Getenv("KUDO_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if err := validateBind(cfg.Bind, cfg.AllowRemote); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateBind refuses non-loopback binds unless explicitly opting into
// remote access. Only 127.0.0.0/8, ::1, and "localhost" are considered safe.
func validateBind(bind string, allowRemote bool) error {
	if allowRemote {
		return nil
	}
	host, _, err := net.SplitHostPort(bind)
	if err != nil || host == "" {
		return nil
	}
	ip := net.ParseIP(host)
	switch {
	case ip != nil && ip.IsLoopback():
		return nil
	case ip == nil && host == "localhost":
		return nil
	default:
		return fmt.Errorf("%w: KUDO_BIND=%s", ErrNonLoopbackBind, bind)
	}
}
