// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for oracle.
//
// Configuration is read from TOML, with sensible defaults, a local .env file
// and environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - --config flag
//   - ~/.oracle/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/oracle-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete oracle configuration.
type Config struct {
	Version string `toml:"version"`

	// Chat endpoint configuration
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Ambient scene configuration
	Scene SceneConfig `toml:"scene"`

	// Model asset configuration
	Assets AssetsConfig `toml:"assets"`
}

// ChatConfig contains the chat endpoint settings.
type ChatConfig struct {
	// Endpoint is the full URL of the chat API (POST {"message": ...})
	Endpoint string `toml:"endpoint"`
	// TimeoutSecs bounds a single request. 0 means no timeout.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Reveal renders replies one character at a time
	Reveal bool `toml:"reveal"`
	// RevealDelayMs is the pause between revealed characters
	RevealDelayMs int `toml:"reveal_delay_ms"`
	// RenderMarkdown renders the final reply with glamour
	RenderMarkdown bool `toml:"render_markdown"`
	// LogFile receives logs while the TUI owns the terminal
	LogFile string `toml:"log_file"`
	// Theme is "dark" or "light"
	Theme string `toml:"theme"`
	// LoadingText is shown next to the spinner while a reply is pending
	LoadingText string `toml:"loading_text"`
	// Spinner is "pulse", "dots" or "line"
	Spinner string `toml:"spinner"`
	// ShowTimer adds the elapsed time to the loading indicator
	ShowTimer bool `toml:"show_timer"`
}

// SceneConfig contains the ambient backdrop settings.
type SceneConfig struct {
	Enabled bool `toml:"enabled"`
	// FPS is the frame rate of the render loop
	FPS int `toml:"fps"`
	// Objects is the number of clones spawned per clone model
	Objects int `toml:"objects"`
	// RotationRate is the singleton spin rate in radians per second
	RotationRate float64 `toml:"rotation_rate"`
	// GazeDepth pulls the look-at point toward the camera so objects face the viewer
	GazeDepth float64 `toml:"gaze_depth"`
	// CellAspect is the width/height ratio of one terminal cell
	CellAspect float64 `toml:"cell_aspect"`
	// Seed for object placement; 0 picks one from the clock
	Seed int64 `toml:"seed"`
	// Spread is the half-extent of the spawn box on X and Y
	Spread float64 `toml:"spread"`
	// Render is "shaded" or "wire"
	Render string `toml:"render"`
}

// AssetsConfig describes where model files come from.
type AssetsConfig struct {
	// Source is "embedded", a directory path, or an http(s) base URL
	Source string `toml:"source"`
	// Watch reloads models when files in a directory source change
	Watch bool `toml:"watch"`
	// Models to load at startup
	Models []ModelConfig `toml:"models"`
}

// ModelConfig is one model with its primary and fallback path.
type ModelConfig struct {
	Name     string `toml:"name"`
	Primary  string `toml:"primary"`
	Fallback string `toml:"fallback"`
	// Role is "clone" (spawned N times, animated) or "singleton" (spins in place)
	Role string `toml:"role"`
}

// Model roles.
const (
	RoleClone     = "clone"
	RoleSingleton = "singleton"
)

// Spinner styles.
const (
	SpinnerPulse = "pulse"
	SpinnerDots  = "dots"
	SpinnerLine  = "line"
)

// Scene render modes.
const (
	RenderShaded = "shaded"
	RenderWire   = "wire"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Chat: ChatConfig{
			Endpoint:    "http://127.0.0.1:5000/api/chat",
			TimeoutSecs: 0,
		},

		UI: UIConfig{
			Reveal:         true,
			RevealDelayMs:  20,
			RenderMarkdown: false,
			Theme:          "dark",
			LoadingText:    "Consulting the oracle",
			Spinner:        SpinnerPulse,
			ShowTimer:      true,
		},

		Scene: SceneConfig{
			Enabled:      true,
			FPS:          30,
			Objects:      6,
			RotationRate: 0.6,
			GazeDepth:    4,
			CellAspect:   0.5,
			Seed:         0,
			Spread:       4,
			Render:       RenderShaded,
		},

		Assets: AssetsConfig{
			Source: "embedded",
			Watch:  false,
			Models: []ModelConfig{
				{Name: "eye", Primary: "models/eye.obj", Fallback: "static/models/eye.obj", Role: RoleClone},
				{Name: "orb", Primary: "models/orb.obj", Fallback: "static/models/orb.obj", Role: RoleSingleton},
			},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the oracle configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".oracle"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns the log path used by the TUI when none is configured.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "oracle.log")
	}
	return filepath.Join(dir, "oracle.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.oracle/config.toml, falling back to
// defaults when the file does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	loadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}

	loadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// loadDotEnv reads ./.env into the process environment without overriding
// variables that are already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# oracle configuration file\n")
	buf.WriteString("# Generated by oracle config init - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
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

	u, err := url.Parse(c.Chat.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "chat.endpoint",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Chat.Endpoint),
		})
	}
	if c.Chat.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "chat.timeout_secs", Message: "must not be negative"})
	}

	if c.UI.RevealDelayMs < 0 || c.UI.RevealDelayMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "ui.reveal_delay_ms",
			Message: fmt.Sprintf("%d out of range, must be 0-1000", c.UI.RevealDelayMs),
		})
	}
	if t := strings.ToLower(c.UI.Theme); t != "dark" && t != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}
	switch c.UI.Spinner {
	case SpinnerPulse, SpinnerDots, SpinnerLine:
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.spinner",
			Message: fmt.Sprintf("invalid spinner '%s', must be one of: pulse, dots, line", c.UI.Spinner),
		})
	}

	if c.Scene.FPS < 1 || c.Scene.FPS > 120 {
		errs = append(errs, ValidationError{
			Field:   "scene.fps",
			Message: fmt.Sprintf("%d out of range, must be 1-120", c.Scene.FPS),
		})
	}
	if c.Scene.Objects < 0 || c.Scene.Objects > 256 {
		errs = append(errs, ValidationError{
			Field:   "scene.objects",
			Message: fmt.Sprintf("%d out of range, must be 0-256", c.Scene.Objects),
		})
	}
	if c.Scene.CellAspect <= 0 || c.Scene.CellAspect > 2 {
		errs = append(errs, ValidationError{Field: "scene.cell_aspect", Message: "must be in (0, 2]"})
	}
	if c.Scene.Spread <= 0 {
		errs = append(errs, ValidationError{Field: "scene.spread", Message: "must be positive"})
	}
	if c.Scene.Render != RenderShaded && c.Scene.Render != RenderWire {
		errs = append(errs, ValidationError{
			Field:   "scene.render",
			Message: fmt.Sprintf("invalid render mode '%s', must be one of: shaded, wire", c.Scene.Render),
		})
	}

	if c.Assets.Source == "" {
		errs = append(errs, ValidationError{Field: "assets.source", Message: "must not be empty"})
	}
	seen := make(map[string]bool, len(c.Assets.Models))
	for i, m := range c.Assets.Models {
		field := fmt.Sprintf("assets.models[%d]", i)
		if m.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "must not be empty"})
		} else if seen[m.Name] {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate model name '%s'", m.Name)})
		}
		seen[m.Name] = true
		if m.Primary == "" {
			errs = append(errs, ValidationError{Field: field + ".primary", Message: "must not be empty"})
		}
		if m.Role != RoleClone && m.Role != RoleSingleton {
			errs = append(errs, ValidationError{
				Field:   field + ".role",
				Message: fmt.Sprintf("invalid role '%s', must be one of: clone, singleton", m.Role),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have a meaningful default.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Chat.Endpoint == "" {
		c.Chat.Endpoint = defaults.Chat.Endpoint
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.LoadingText == "" {
		c.UI.LoadingText = defaults.UI.LoadingText
	}
	if c.UI.Spinner == "" {
		c.UI.Spinner = defaults.UI.Spinner
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = DefaultLogFile()
	}
	if c.Scene.FPS == 0 {
		c.Scene.FPS = defaults.Scene.FPS
	}
	if c.Scene.CellAspect == 0 {
		c.Scene.CellAspect = defaults.Scene.CellAspect
	}
	if c.Scene.Spread == 0 {
		c.Scene.Spread = defaults.Scene.Spread
	}
	if c.Scene.Render == "" {
		c.Scene.Render = defaults.Scene.Render
	}
	if c.Assets.Source == "" {
		c.Assets.Source = defaults.Assets.Source
	}
	for i := range c.Assets.Models {
		if c.Assets.Models[i].Role == "" {
			c.Assets.Models[i].Role = RoleClone
		}
	}
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - ORACLE_ENDPOINT: overrides chat.endpoint
//   - ORACLE_ASSETS: overrides assets.source
//   - ORACLE_REVEAL_DELAY_MS: overrides ui.reveal_delay_ms
//   - ORACLE_OBJECTS: overrides scene.objects
//   - ORACLE_FPS: overrides scene.fps
//   - ORACLE_LOG_FILE: overrides ui.log_file
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("ORACLE_ENDPOINT"); endpoint != "" {
		c.Chat.Endpoint = endpoint
	}
	if source := os.Getenv("ORACLE_ASSETS"); source != "" {
		c.Assets.Source = source
	}
	if v, ok := envInt("ORACLE_REVEAL_DELAY_MS"); ok {
		c.UI.RevealDelayMs = v
	}
	if v, ok := envInt("ORACLE_OBJECTS"); ok {
		c.Scene.Objects = v
	}
	if v, ok := envInt("ORACLE_FPS"); ok {
		c.Scene.FPS = v
	}
	if path := os.Getenv("ORACLE_LOG_FILE"); path != "" {
		c.UI.LogFile = path
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring %s=%q: not an integer\n", key, v)
		return 0, false
	}
	return n, true
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RevealDelay returns the reveal delay as a duration.
func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.UI.RevealDelayMs) * time.Millisecond
}

// ChatTimeout returns the request timeout, 0 meaning none.
func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Chat.TimeoutSecs) * time.Second
}

// FrameInterval returns the time between rendered frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Scene.FPS)
}

// ErrNoModels is returned when a lookup finds no model of the requested role.
var ErrNoModels = errors.New("no models configured")

// ModelsByRole returns the configured models with the given role.
func (c *Config) ModelsByRole(role string) ([]ModelConfig, error) {
	var out []ModelConfig
	for _, m := range c.Assets.Models {
		if m.Role == role {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w with role %q", ErrNoModels, role)
	}
	return out, nil
}
