// Package config loads the optional portreclaim configuration file.
//
// The file is YAML by default. Files ending in .json or .jsonc are read as
// JSONC: comments are stripped with github.com/tidwall/jsonc and the result
// is parsed with encoding/json. Values present in the file override the
// defaults; absent keys keep them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the default
// config file location.
const EnvConfigPath = "PORTRECLAIM_CONFIG"

// defaultFileName is looked up in the user's home directory.
const defaultFileName = ".portreclaim.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all runtime configuration for portreclaim.
type Config struct {
	// LsofPath is the socket-table query binary.
	LsofPath string `yaml:"lsof_path" json:"lsof_path"`

	// Signal is the signal name used to terminate port holders (KILL or TERM).
	Signal string `yaml:"signal" json:"signal"`

	// Loopback is the address substituted for -l / --local.
	Loopback string `yaml:"loopback" json:"loopback"`

	// Docker enables container-aware reclaiming.
	Docker bool `yaml:"docker" json:"docker"`

	// Strict enables non-zero exit codes for usage errors and busy ports.
	Strict bool `yaml:"strict" json:"strict"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" json:"log_format"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color" json:"color"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		LsofPath:  "lsof",
		Signal:    "KILL",
		Loopback:  "127.0.0.1",
		Docker:    false,
		Strict:    false,
		LogFormat: "text",
		Color:     ColorAuto,
	}
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch strings.TrimPrefix(strings.ToUpper(c.Signal), "SIG") {
	case "KILL", "TERM":
	default:
		return fmt.Errorf("invalid signal %q (valid: KILL, TERM)", c.Signal)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (valid: auto, always, never)", c.Color)
	}
	if strings.TrimSpace(c.Loopback) == "" {
		return fmt.Errorf("loopback address must not be empty")
	}
	return nil
}

// Path resolves the config file location: explicit path, then
// $PORTRECLAIM_CONFIG, then ~/.portreclaim.yaml. It returns "" when no
// location can be determined.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultFileName)
}

// Load reads the config file at Path(path) and merges it onto the defaults.
// A missing file is not an error, unless it was named explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved := Path(path)
	if resolved == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) && path == "" {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", resolved, err)
	}

	if err := decode(resolved, data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", resolved, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", resolved, err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}
