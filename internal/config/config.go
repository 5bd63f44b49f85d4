// Package config holds operator-level configuration for a veil process.
// Set via env vars (VEIL_*) or a config file (veil.config.yaml).
package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the VEIL prefix
// (e.g. "pattern_file" → VEIL_PATTERN_FILE) and to a YAML field in
// veil.config.yaml.
const (
	KeyPatternFile   = "pattern_file"
	KeyMarker        = "marker"
	KeyMaxFileMB     = "max_file_mb"
	KeyEnabledTypes  = "enabled_types"
	KeyDisabledTypes = "disabled_types"
	KeyPort          = "port"
	KeyGlobalRPM     = "global_rpm"
	KeyPerClientRPM  = "per_client_rpm"
)

// Defaults.
const (
	DefaultMarker       = "*"
	DefaultMaxFileMB    = 10
	DefaultPort         = 8080
	DefaultGlobalRPM    = 600
	DefaultPerClientRPM = 120
)

// Config holds resolved configuration for a veil process.
type Config struct {
	PatternFile   string   // optional global detector pack path
	Marker        string   // redaction marker (single character)
	MaxFileMB     int      // maximum input file size in MB
	EnabledTypes  []string // entity type whitelist (empty = all)
	DisabledTypes []string // entity type blacklist
	Port          int      // HTTP server port
	GlobalRPM     int      // server-wide requests/minute
	PerClientRPM  int      // per-client requests/minute
}

func init() {
	viper.SetEnvPrefix("VEIL")
	viper.AutomaticEnv()
	viper.SetDefault(KeyMarker, DefaultMarker)
	viper.SetDefault(KeyMaxFileMB, DefaultMaxFileMB)
	viper.SetDefault(KeyPort, DefaultPort)
	viper.SetDefault(KeyGlobalRPM, DefaultGlobalRPM)
	viper.SetDefault(KeyPerClientRPM, DefaultPerClientRPM)
}

// Load reads configuration from Viper (which merges env vars, config file,
// and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		PatternFile:   viper.GetString(KeyPatternFile),
		Marker:        viper.GetString(KeyMarker),
		MaxFileMB:     viper.GetInt(KeyMaxFileMB),
		EnabledTypes:  viper.GetStringSlice(KeyEnabledTypes),
		DisabledTypes: viper.GetStringSlice(KeyDisabledTypes),
		Port:          viper.GetInt(KeyPort),
		GlobalRPM:     viper.GetInt(KeyGlobalRPM),
		PerClientRPM:  viper.GetInt(KeyPerClientRPM),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MarkerRune returns the configured marker as a rune. Redacted output keeps
// the input's byte length only when the marker is a single byte; multi-byte
// markers preserve length in marker repetitions, not bytes.
func (c *Config) MarkerRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Marker)
	return r
}

func (c *Config) validate() error {
	if utf8.RuneCountInString(c.Marker) != 1 {
		return fmt.Errorf("marker must be exactly one character (got %q)", c.Marker)
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1-65535 (got %d)", c.Port)
	}
	if c.GlobalRPM <= 0 || c.PerClientRPM <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}
