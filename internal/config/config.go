// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/egghead-ai/egghead-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete egghead-tui configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// Answer preferences sent with every chat request
	Preferences PreferencesConfig `toml:"preferences"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains the assistant backend connection settings.
type BackendConfig struct {
	// BaseURL is the URL of the Egghead backend
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// StorageConfig contains conversation storage settings.
type StorageConfig struct {
	// DataDir is the directory holding the conversation state file and
	// the search index (empty = default ~/.egghead)
	DataDir string `toml:"data_dir"`
}

// PreferencesConfig contains the answer preferences forwarded to the backend.
type PreferencesConfig struct {
	// Tone of replies: "friendly", "neutral", or "formal"
	Tone string `toml:"tone"`
	// Depth of replies: "short", "medium", or "detailed"
	Depth string `toml:"depth"`
	// UseUCDSources restricts answers to UC Davis sources
	UseUCDSources bool `toml:"use_ucd_sources"`
	// ShowReferences includes source references with replies
	ShowReferences bool `toml:"show_references"`
	// Model is the backend model identifier
	Model string `toml:"model"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// SidebarVisible shows the conversation sidebar on startup
	SidebarVisible bool `toml:"sidebar_visible"`
	// RenderMarkdown renders assistant replies as markdown
	RenderMarkdown bool `toml:"render_markdown"`
	// ConvertEmoticons rewrites ASCII emoticons in replies to emoji
	ConvertEmoticons bool `toml:"convert_emoticons"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:     "http://127.0.0.1:8000",
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			DataDir: "",
		},
		Preferences: PreferencesConfig{
			Tone:           "friendly",
			Depth:          "medium",
			UseUCDSources:  true,
			ShowReferences: true,
			Model:          "hf:mistralai/Mistral-7B-Instruct",
		},
		UI: UIConfig{
			SidebarVisible:   true,
			RenderMarkdown:   true,
			ConvertEmoticons: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the egghead configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".egghead"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the conversation data directory, falling back to the
// config directory when storage.data_dir is unset.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// Timeout returns the per-request backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.egghead/config.toml, falling back to
// defaults when the file is missing. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. A missing file yields defaults, not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs <= 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Preferences.Tone == "" {
		c.Preferences.Tone = defaults.Preferences.Tone
	}
	if c.Preferences.Depth == "" {
		c.Preferences.Depth = defaults.Preferences.Depth
	}
	if c.Preferences.Model == "" {
		c.Preferences.Model = defaults.Preferences.Model
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# egghead-tui configuration file")
	fmt.Fprintln(&buf, "# Generated by egghead-tui - edit with care")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate backend URL
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Backend.BaseURL),
		})
	}

	// Validate timeout
	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be positive, got %d", c.Backend.TimeoutSecs),
		})
	}

	// Validate tone
	validTones := map[string]bool{"friendly": true, "neutral": true, "formal": true}
	if !validTones[strings.ToLower(c.Preferences.Tone)] {
		errs = append(errs, ValidationError{
			Field:   "preferences.tone",
			Message: fmt.Sprintf("invalid tone '%s', must be one of: friendly, neutral, formal", c.Preferences.Tone),
		})
	}

	// Validate depth
	validDepths := map[string]bool{"short": true, "medium": true, "detailed": true}
	if !validDepths[strings.ToLower(c.Preferences.Depth)] {
		errs = append(errs, ValidationError{
			Field:   "preferences.depth",
			Message: fmt.Sprintf("invalid depth '%s', must be one of: short, medium, detailed", c.Preferences.Depth),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - EGGHEAD_BACKEND_URL: overrides backend.base_url
//   - EGGHEAD_TIMEOUT_SECS: overrides backend.timeout_secs
//   - EGGHEAD_DATA_DIR: overrides storage.data_dir
//   - EGGHEAD_MODEL: overrides preferences.model
//   - EGGHEAD_TONE: overrides preferences.tone
//   - EGGHEAD_DEPTH: overrides preferences.depth
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("EGGHEAD_BACKEND_URL"); base != "" {
		c.Backend.BaseURL = base
	}
	if secs := os.Getenv("EGGHEAD_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if dir := os.Getenv("EGGHEAD_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if model := os.Getenv("EGGHEAD_MODEL"); model != "" {
		c.Preferences.Model = model
	}
	if tone := os.Getenv("EGGHEAD_TONE"); tone != "" {
		c.Preferences.Tone = tone
	}
	if depth := os.Getenv("EGGHEAD_DEPTH"); depth != "" {
		c.Preferences.Depth = depth
	}
}
