// Package config provides configuration management for cdm.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "cdm"

// Paths holds the directories cdm reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/cdm)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/cdm)
	DataDir string
}

// DefaultPaths returns the default paths following the XDG Base Directory layout.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return &Paths{
			ConfigDir: filepath.Join(appData, appName),
			DataDir:   filepath.Join(localAppData, appName),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, appName),
		DataDir:   filepath.Join(dataHome, appName),
	}
}

// ConfigFile returns the path to the YAML configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// LegacyConfigFile returns the path of the older TOML configuration, read only when
// no YAML file exists.
func (p *Paths) LegacyConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.toml")
}

// DatabaseFile returns the default location of the SQLite history.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "visits.db")
}

// EnsureDirectories creates the config and data directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// HomeDir returns the user's home directory, or "" when it cannot be determined.
func HomeDir() string {
	return homeDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
