// Package paths decides where pagemark keeps its configuration and local
// data. Config follows the platform convention; data defaults to a
// directory under the CWD so throwaway experiments stay contained to the
// working tree.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the per-application directory under the platform roots.
const appDirName = "pagemark"

// DefaultDataDirName is the CWD-relative data directory default.
const DefaultDataDirName = ".pagemark-db"

// SettingsDBName is the settings database file inside the data directory.
const SettingsDBName = "settings.db"

// Environment variable overrides.
const (
	EnvConfigDir = "PAGEMARK_CONFIG_DIR"
	EnvDataDir   = "PAGEMARK_DATA_DIR"
)

// ResolveConfigDir returns the configuration directory, taking the first
// non-empty of: the flag value, $PAGEMARK_CONFIG_DIR, the platform
// default. Relative overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory, taking the first non-empty
// of: the flag value, the config-file value, $PAGEMARK_DATA_DIR, and
// finally $(CWD)/.pagemark-db. Relative overrides are made absolute.
func ResolveDataDir(flag, configured string) (string, error) {
	if dir := firstNonEmpty(flag, configured, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// SettingsDB returns the settings database path inside the data directory.
func SettingsDB(dataDir string) string {
	return filepath.Join(dataDir, SettingsDBName)
}

// DefaultConfigDir returns the platform configuration directory:
// $XDG_CONFIG_HOME/pagemark (fallback ~/.config/pagemark) on Linux,
// os.UserConfigDir()/pagemark elsewhere (~/Library/Application Support on
// macOS, %APPDATA% on Windows).
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// DefaultDataDir returns the platform data directory:
// $XDG_DATA_HOME/pagemark (fallback ~/.local/share/pagemark) on Linux,
// the config directory elsewhere. ResolveDataDir does not use this; it is
// for callers that want persistent rather than CWD-scoped data.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// xdgDir resolves an XDG base directory, falling back to the conventional
// home-relative location when the variable is unset.
func xdgDir(envVar string, homeFallback ...string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, homeFallback...)
	return filepath.Join(append(parts, appDirName)...), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
