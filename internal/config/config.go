package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/runger/cdm/internal/display"
)

// Config represents the cdm configuration.
type Config struct {
	History  HistoryConfig     `yaml:"history"`
	CoAccess CoAccessConfig    `yaml:"coaccess"`
	Picker   PickerConfig      `yaml:"picker"`
	Goahead  GoaheadConfig     `yaml:"goahead"`
	Aliases  map[string]string `yaml:"aliases,omitempty"` // Display name -> directory
	Log      LogConfig         `yaml:"log"`
}

// HistoryConfig holds history storage settings.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // file or sqlite
	Path    string `yaml:"path"`    // Empty uses the backend's default location
	Depth   int    `yaml:"depth"`   // Entries considered by cdr and cdf
}

// CoAccessConfig holds co-access graph settings.
type CoAccessConfig struct {
	Window int `yaml:"window"` // Sliding window size, at least 2
}

// PickerConfig holds selection prompt settings.
type PickerConfig struct {
	Number int    `yaml:"number"` // Maximum candidates shown
	TTY    string `yaml:"tty"`    // Terminal device read for keystrokes
}

// GoaheadConfig holds directory listing settings.
type GoaheadConfig struct {
	Depth            int  `yaml:"depth"`
	RespectGitignore bool `yaml:"respect_gitignore"`
	ShowHidden       bool `yaml:"show_hidden"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Backend: BackendFile,
			Depth:   500,
		},
		CoAccess: CoAccessConfig{Window: 3},
		Picker: PickerConfig{
			Number: 15,
			TTY:    "/dev/tty",
		},
		Goahead: GoaheadConfig{
			Depth:      3,
			ShowHidden: true,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load loads configuration from the default paths.
func Load() (*Config, error) {
	return LoadFromPaths(DefaultPaths())
}

// LoadFromPaths loads p.ConfigFile(), falling back to the legacy TOML file when no
// YAML file exists, and to defaults when neither does.
func LoadFromPaths(p *Paths) (*Config, error) {
	yamlPath := p.ConfigFile()
	if _, err := os.Stat(yamlPath); os.IsNotExist(err) {
		if _, err := os.Stat(p.LegacyConfigFile()); err == nil {
			return LoadLegacyFile(p.LegacyConfigFile())
		}
	}
	return LoadFromFile(yamlPath)
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(cfg)
}

// legacyConfig is the flat TOML layout used before config.yaml.
type legacyConfig struct {
	HistoryPath    string            `toml:"history_path"`
	CoAccessWindow int               `toml:"coaccess_window"`
	PathAliases    map[string]string `toml:"path_aliases"`
}

// LoadLegacyFile loads a TOML configuration with history_path, coaccess_window and
// path_aliases keys. Unset keys keep their defaults.
func LoadLegacyFile(path string) (*Config, error) {
	var legacy legacyConfig
	if _, err := toml.DecodeFile(path, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse legacy config file: %w", err)
	}

	cfg := DefaultConfig()
	if legacy.HistoryPath != "" {
		cfg.History.Path = legacy.HistoryPath
	}
	if legacy.CoAccessWindow != 0 {
		cfg.CoAccess.Window = legacy.CoAccessWindow
	}
	if len(legacy.PathAliases) > 0 {
		cfg.Aliases = legacy.PathAliases
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HistoryPath returns the history location with ~ expanded. An empty path resolves
// to ~/.cd_history for the file backend and the data directory for sqlite.
func (c *Config) HistoryPath(p *Paths) string {
	if c.History.Path != "" {
		return ExpandHome(c.History.Path, HomeDir())
	}
	if c.History.Backend == BackendSQLite {
		return p.DatabaseFile()
	}
	return filepath.Join(HomeDir(), ".cd_history")
}

// DisplayAliases converts the alias map for path formatting. Longer directories come
// first so the most specific alias wins.
func (c *Config) DisplayAliases() []display.Alias {
	home := HomeDir()
	out := make([]display.Alias, 0, len(c.Aliases))
	for name, dir := range c.Aliases {
		if dir == "" {
			continue
		}
		out = append(out, display.Alias{
			Prefix: filepath.Clean(ExpandHome(dir, home)),
			Name:   name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Prefix) != len(out[j].Prefix) {
			return len(out[i].Prefix) > len(out[j].Prefix)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

// Get retrieves a configuration value by dot-separated key.
// For example: "coaccess.window" or "aliases.proj"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "history":
		return c.getHistoryField(field)
	case "coaccess":
		if field == "window" {
			return strconv.Itoa(c.CoAccess.Window), nil
		}
	case "picker":
		return c.getPickerField(field)
	case "goahead":
		return c.getGoaheadField(field)
	case "aliases":
		dir, ok := c.Aliases[field]
		if !ok {
			return "", fmt.Errorf("no alias named %q", field)
		}
		return dir, nil
	case "log":
		if field == "level" {
			return c.Log.Level, nil
		}
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
	return "", fmt.Errorf("unknown field: %s", key)
}

// Set sets a configuration value by dot-separated key. Setting an alias to the
// empty string removes it.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "history":
		return c.setHistoryField(field, value)
	case "coaccess":
		if field == "window" {
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for window: %w", err)
			}
			if v < 2 {
				return errors.New("coaccess.window must be >= 2")
			}
			c.CoAccess.Window = v
			return nil
		}
	case "picker":
		return c.setPickerField(field, value)
	case "goahead":
		return c.setGoaheadField(field, value)
	case "aliases":
		if value == "" {
			delete(c.Aliases, field)
			return nil
		}
		if c.Aliases == nil {
			c.Aliases = make(map[string]string)
		}
		c.Aliases[field] = value
		return nil
	case "log":
		if field == "level" {
			if !isValidLogLevel(value) {
				return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
			}
			c.Log.Level = value
			return nil
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
	return fmt.Errorf("unknown field: %s", key)
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getHistoryField(field string) (string, error) {
	switch field {
	case "backend":
		return c.History.Backend, nil
	case "path":
		return c.History.Path, nil
	case "depth":
		return strconv.Itoa(c.History.Depth), nil
	default:
		return "", fmt.Errorf("unknown field: history.%s", field)
	}
}

func (c *Config) setHistoryField(field, value string) error {
	switch field {
	case "backend":
		if !isValidBackend(value) {
			return fmt.Errorf("invalid backend: %s (must be file or sqlite)", value)
		}
		c.History.Backend = value
	case "path":
		c.History.Path = value
	case "depth":
		v, err := positiveInt("depth", value)
		if err != nil {
			return err
		}
		c.History.Depth = v
	default:
		return fmt.Errorf("unknown field: history.%s", field)
	}
	return nil
}

func (c *Config) getPickerField(field string) (string, error) {
	switch field {
	case "number":
		return strconv.Itoa(c.Picker.Number), nil
	case "tty":
		return c.Picker.TTY, nil
	default:
		return "", fmt.Errorf("unknown field: picker.%s", field)
	}
}

func (c *Config) setPickerField(field, value string) error {
	switch field {
	case "number":
		v, err := positiveInt("number", value)
		if err != nil {
			return err
		}
		c.Picker.Number = v
	case "tty":
		if value == "" {
			return errors.New("picker.tty must not be empty")
		}
		c.Picker.TTY = value
	default:
		return fmt.Errorf("unknown field: picker.%s", field)
	}
	return nil
}

func (c *Config) getGoaheadField(field string) (string, error) {
	switch field {
	case "depth":
		return strconv.Itoa(c.Goahead.Depth), nil
	case "respect_gitignore":
		return strconv.FormatBool(c.Goahead.RespectGitignore), nil
	case "show_hidden":
		return strconv.FormatBool(c.Goahead.ShowHidden), nil
	default:
		return "", fmt.Errorf("unknown field: goahead.%s", field)
	}
}

func (c *Config) setGoaheadField(field, value string) error {
	switch field {
	case "depth":
		v, err := positiveInt("depth", value)
		if err != nil {
			return err
		}
		c.Goahead.Depth = v
	case "respect_gitignore":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for respect_gitignore: %w", err)
		}
		c.Goahead.RespectGitignore = v
	case "show_hidden":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for show_hidden: %w", err)
		}
		c.Goahead.ShowHidden = v
	default:
		return fmt.Errorf("unknown field: goahead.%s", field)
	}
	return nil
}

func positiveInt(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be >= 1 (got: %d)", name, v)
	}
	return v, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !isValidBackend(c.History.Backend) {
		return fmt.Errorf("history.backend must be file or sqlite (got: %s)", c.History.Backend)
	}
	if c.History.Depth < 1 {
		return errors.New("history.depth must be >= 1")
	}
	if c.CoAccess.Window < 2 {
		return fmt.Errorf("coaccess.window must be >= 2 (got: %d)", c.CoAccess.Window)
	}
	if c.Picker.Number < 1 {
		return errors.New("picker.number must be >= 1")
	}
	if c.Picker.TTY == "" {
		return errors.New("picker.tty must not be empty")
	}
	if c.Goahead.Depth < 1 {
		return errors.New("goahead.depth must be >= 1")
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidBackend(backend string) bool {
	switch backend {
	case BackendFile, BackendSQLite:
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CDM_HISTORY"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("CDM_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CoAccess.Window = n
		}
	}
	if v := os.Getenv("CDM_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("CDM_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns the settable configuration keys. Aliases are addressed as
// aliases.<name>.
func ListKeys() []string {
	return []string{
		"history.backend",
		"history.path",
		"history.depth",
		"coaccess.window",
		"picker.number",
		"picker.tty",
		"goahead.depth",
		"goahead.respect_gitignore",
		"goahead.show_hidden",
		"log.level",
	}
}
