// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at a temp dir and clears ORACLE_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"ORACLE_ENDPOINT", "ORACLE_ASSETS", "ORACLE_REVEAL_DELAY_MS", "ORACLE_OBJECTS", "ORACLE_FPS", "ORACLE_LOG_FILE"} {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Chat.Endpoint != "http://127.0.0.1:5000/api/chat" {
		t.Errorf("endpoint = %q", cfg.Chat.Endpoint)
	}
	if cfg.ChatTimeout() != 0 {
		t.Errorf("ChatTimeout() = %v, want no timeout", cfg.ChatTimeout())
	}
	if cfg.Assets.Source != "embedded" {
		t.Errorf("assets.source = %q", cfg.Assets.Source)
	}
}

func TestDerivedDurations(t *testing.T) {
	cfg := Default()
	cfg.UI.RevealDelayMs = 15
	cfg.Chat.TimeoutSecs = 3
	cfg.Scene.FPS = 20

	if got := cfg.RevealDelay(); got != 15*time.Millisecond {
		t.Errorf("RevealDelay() = %v", got)
	}
	if got := cfg.ChatTimeout(); got != 3*time.Second {
		t.Errorf("ChatTimeout() = %v", got)
	}
	if got := cfg.FrameInterval(); got != 50*time.Millisecond {
		t.Errorf("FrameInterval() = %v", got)
	}
}

func TestModelsByRole(t *testing.T) {
	cfg := Default()

	clones, err := cfg.ModelsByRole(RoleClone)
	if err != nil || len(clones) != 1 || clones[0].Name != "eye" {
		t.Errorf("clones = %v, %v", clones, err)
	}

	cfg.Assets.Models = cfg.Assets.Models[:1]
	_, err = cfg.ModelsByRole(RoleSingleton)
	if !errors.Is(err, ErrNoModels) {
		t.Errorf("err = %v, want ErrNoModels", err)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative endpoint", func(c *Config) { c.Chat.Endpoint = "/api/chat" }, "chat.endpoint"},
		{"ftp endpoint", func(c *Config) { c.Chat.Endpoint = "ftp://host/api" }, "chat.endpoint"},
		{"negative timeout", func(c *Config) { c.Chat.TimeoutSecs = -1 }, "chat.timeout_secs"},
		{"reveal delay", func(c *Config) { c.UI.RevealDelayMs = 5000 }, "ui.reveal_delay_ms"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"fps", func(c *Config) { c.Scene.FPS = 0 }, "scene.fps"},
		{"objects", func(c *Config) { c.Scene.Objects = -2 }, "scene.objects"},
		{"cell aspect", func(c *Config) { c.Scene.CellAspect = 0 }, "scene.cell_aspect"},
		{"spread", func(c *Config) { c.Scene.Spread = -1 }, "scene.spread"},
		{"render mode", func(c *Config) { c.Scene.Render = "voxel" }, "scene.render"},
		{"spinner", func(c *Config) { c.UI.Spinner = "wheel" }, "ui.spinner"},
		{"source", func(c *Config) { c.Assets.Source = "" }, "assets.source"},
		{"duplicate model", func(c *Config) { c.Assets.Models[1].Name = "eye" }, "assets.models[1].name"},
		{"missing primary", func(c *Config) { c.Assets.Models[0].Primary = "" }, "assets.models[0].primary"},
		{"bad role", func(c *Config) { c.Assets.Models[0].Role = "boss" }, "assets.models[0].role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %s", verrs, tt.field)
			}
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	if got := (ValidateErrors{}).Error(); got != "no validation errors" {
		t.Errorf("empty = %q", got)
	}
	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	if got := errs.Error(); got != "a: x; b: y" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	isolate(t)
	cfg := &Config{Assets: AssetsConfig{Models: []ModelConfig{{Name: "cube", Primary: "cube.obj"}}}}

	cfg.SetDefaults()

	if cfg.Scene.FPS != 30 || cfg.Scene.CellAspect != 0.5 || cfg.Scene.Spread != 4 {
		t.Errorf("scene defaults not applied: %+v", cfg.Scene)
	}
	if cfg.Assets.Models[0].Role != RoleClone {
		t.Errorf("role = %q, want clone", cfg.Assets.Models[0].Role)
	}
	if !strings.HasSuffix(cfg.UI.LogFile, "oracle.log") {
		t.Errorf("log file = %q", cfg.UI.LogFile)
	}
	if cfg.UI.Spinner != SpinnerPulse || cfg.UI.LoadingText == "" || cfg.Scene.Render != RenderShaded {
		t.Errorf("ui/scene defaults not applied: %+v %+v", cfg.UI, cfg.Scene)
	}
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.toml")
	writeFile(t, path, `
[chat]
endpoint = "http://oracle.test/api/chat"
timeout_secs = 5

[scene]
fps = 12
objects = 3

[[assets.models]]
name = "cube"
primary = "cube.obj"
role = "singleton"
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Chat.Endpoint != "http://oracle.test/api/chat" {
		t.Errorf("endpoint = %q", cfg.Chat.Endpoint)
	}
	if cfg.ChatTimeout() != 5*time.Second {
		t.Errorf("timeout = %v", cfg.ChatTimeout())
	}
	if cfg.Scene.FPS != 12 || cfg.Scene.Objects != 3 {
		t.Errorf("scene = %+v", cfg.Scene)
	}
	if len(cfg.Assets.Models) != 1 || cfg.Assets.Models[0].Name != "cube" {
		t.Errorf("models = %+v", cfg.Assets.Models)
	}
	// Untouched sections keep their defaults.
	if !cfg.UI.Reveal {
		t.Error("ui.reveal default lost")
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.toml")
	writeFile(t, path, "[scene]\nfps = 500\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.toml")
	writeFile(t, path, "[chat\nendpoint = ")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scene.FPS != 30 {
		t.Errorf("fps = %d", cfg.Scene.FPS)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ORACLE_ENDPOINT", "https://remote.test/api/chat")
	t.Setenv("ORACLE_ASSETS", "/srv/models")
	t.Setenv("ORACLE_OBJECTS", "9")
	t.Setenv("ORACLE_FPS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chat.Endpoint != "https://remote.test/api/chat" {
		t.Errorf("endpoint = %q", cfg.Chat.Endpoint)
	}
	if cfg.Assets.Source != "/srv/models" {
		t.Errorf("source = %q", cfg.Assets.Source)
	}
	if cfg.Scene.Objects != 9 {
		t.Errorf("objects = %d", cfg.Scene.Objects)
	}
	if cfg.Scene.FPS != 30 {
		t.Errorf("invalid ORACLE_FPS should be ignored, got %d", cfg.Scene.FPS)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	os.Unsetenv("ORACLE_ENDPOINT")
	writeFile(t, filepath.Join(home, ".env"), "ORACLE_ENDPOINT=http://dotenv.test/api/chat\n")
	t.Cleanup(func() { os.Unsetenv("ORACLE_ENDPOINT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chat.Endpoint != "http://dotenv.test/api/chat" {
		t.Errorf("endpoint = %q", cfg.Chat.Endpoint)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".oracle", "config.toml")

	cfg := Default()
	cfg.Scene.Objects = 11
	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Scene.Objects != 11 || loaded.UI.Theme != "light" {
		t.Errorf("loaded = %+v", loaded)
	}
}
