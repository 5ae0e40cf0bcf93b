// ABOUTME: XDG-based data and config directory resolution for the kudo CLI.
// ABOUTME: Checks XDG_DATA_HOME / XDG_CONFIG_HOME, falls back to ~/.local/share/kudo and ~/.config/kudo.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// xdgDir resolves one XDG base directory: the env override when set, else
// fallback elements joined under the home directory. The kudo subdirectory is
// appended either way.
func xdgDir(envVar string, fallback ...string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, "kudo"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, "kudo")...), nil
}

// defaultDataDir returns the directory for kudo persistent state.
func defaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// defaultConfigDir returns the directory kudo reads its config file from.
func defaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// resolveDataDir returns the explicit dir when set, else the XDG default.
func resolveDataDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return defaultDataDir()
}
