// ABOUTME: Tests for CLI configuration loading and bind-address validation.
// ABOUTME: Covers defaults, YAML config file, env overrides, and loopback enforcement.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// clearKudoEnv blanks all KUDO_* variables for the duration of a test.
func clearKudoEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"KUDO_API_URL", "KUDO_BIND", "KUDO_ALLOW_REMOTE", "KUDO_AUTHOR", "KUDO_DATA_DIR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Point the config dir somewhere empty so the developer's real config
	// file never leaks into tests.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	clearKudoEnv(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:3000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Bind != "127.0.0.1:8467" {
		t.Errorf("Bind = %q", cfg.Bind)
	}
	if cfg.AllowRemote {
		t.Error("AllowRemote should default to false")
	}
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	clearKudoEnv(t)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	dir := filepath.Join(configHome, "kudo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "api_url: https://boards.example.com\ndefault_author: Dana\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIURL != "https://boards.example.com" {
		t.Errorf("APIURL = %q, want value from config file", cfg.APIURL)
	}
	if cfg.DefaultAuthor != "Dana" {
		t.Errorf("DefaultAuthor = %q", cfg.DefaultAuthor)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	clearKudoEnv(t)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	dir := filepath.Join(configHome, "kudo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api_url: https://file.example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KUDO_API_URL", "https://env.example.com")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Errorf("APIURL = %q, env should win over file", cfg.APIURL)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	clearKudoEnv(t)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	dir := filepath.Join(configHome, "kudo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api_url: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestValidateBind(t *testing.T) {
	tests := []struct {
		name        string
		bind        string
		allowRemote bool
		wantErr     bool
	}{
		{"loopback v4", "127.0.0.1:8467", false, false},
		{"loopback v6", "[::1]:8467", false, false},
		{"localhost", "localhost:8467", false, false},
		{"all interfaces", "0.0.0.0:8467", false, true},
		{"lan address", "192.168.1.5:8467", false, true},
		{"hostname", "myhost:8467", false, true},
		{"all interfaces allowed", "0.0.0.0:8467", true, false},
		{"no port", "127.0.0.1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBind(tt.bind, tt.allowRemote)
			if tt.wantErr && err == nil {
				t.Errorf("validateBind(%q, %t) = nil, want error", tt.bind, tt.allowRemote)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateBind(%q, %t) = %v, want nil", tt.bind, tt.allowRemote, err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrNonLoopbackBind) {
				t.Errorf("error %v is not ErrNonLoopbackBind", err)
			}
		})
	}
}

func TestLoadConfigRejectsRemoteBind(t *testing.T) {
	clearKudoEnv(t)
	t.Setenv("KUDO_BIND", "0.0.0.0:8467")

	_, err := loadConfig()
	if !errors.Is(err, ErrNonLoopbackBind) {
		t.Errorf("err = %v, want ErrNonLoopbackBind", err)
	}

	t.Setenv("KUDO_ALLOW_REMOTE", "true")
	if _, err := loadConfig(); err != nil {
		t.Errorf("err = %v with remote allowed, want nil", err)
	}
}
