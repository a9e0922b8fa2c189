package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.FOV != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Graphics.FOV)
	}
	if cfg.Graphics.Near >= cfg.Graphics.Far {
		t.Errorf("expected near < far, got %f >= %f", cfg.Graphics.Near, cfg.Graphics.Far)
	}

	if cfg.Viewer.PlaybackSpeed != 1.0 {
		t.Errorf("expected playback speed 1.0, got %f", cfg.Viewer.PlaybackSpeed)
	}
	if !cfg.Viewer.ShowFPS {
		t.Error("expected show_fps to be true by default")
	}
	if !cfg.Viewer.Fog {
		t.Error("expected fog to be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 60
  near: 0.5
  far: 1000

viewer:
  model: "models/walker.gltf"
  playback_speed: 0.5
  show_fps: false
  fog: false

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Graphics.FOV)
	}

	if cfg.Viewer.Model != "models/walker.gltf" {
		t.Errorf("expected model models/walker.gltf, got %s", cfg.Viewer.Model)
	}
	if cfg.Viewer.PlaybackSpeed != 0.5 {
		t.Errorf("expected playback speed 0.5, got %f", cfg.Viewer.PlaybackSpeed)
	}
	if cfg.Viewer.ShowFPS {
		t.Error("expected show_fps to be false")
	}
	if cfg.Viewer.Fog {
		t.Error("expected fog to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS, just verify the shape.
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Viewer.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "model flag",
			setup: func() {
				*flagModel = "rigs/soldier.glb"
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Model != "rigs/soldier.glb" {
					t.Errorf("expected model rigs/soldier.glb, got %s", cfg.Viewer.Model)
				}
			},
			teardown: func() {
				*flagModel = ""
			},
		},
		{
			name: "speed flag",
			setup: func() {
				*flagSpeed = 2.5
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.PlaybackSpeed != 2.5 {
					t.Errorf("expected playback speed 2.5, got %f", cfg.Viewer.PlaybackSpeed)
				}
			},
			teardown: func() {
				*flagSpeed = 0
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "nofog flag",
			setup: func() {
				*flagNoFog = true
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Fog {
					t.Error("expected fog to be disabled with nofog flag")
				}
			},
			teardown: func() {
				*flagNoFog = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	// Nested path exercises parent directory creation.
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 1920
	cfg.Graphics.Fullscreen = true
	cfg.Viewer.Model = "models/walker.gltf"
	cfg.Viewer.PlaybackSpeed = 0.25
	cfg.Logging.Level = "debug"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, configPath); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 after round trip, got %d", loaded.Graphics.Width)
	}
	if !loaded.Graphics.Fullscreen {
		t.Error("expected fullscreen to survive round trip")
	}
	if loaded.Viewer.Model != "models/walker.gltf" {
		t.Errorf("expected model models/walker.gltf after round trip, got %s", loaded.Viewer.Model)
	}
	if loaded.Viewer.PlaybackSpeed != 0.25 {
		t.Errorf("expected playback speed 0.25 after round trip, got %f", loaded.Viewer.PlaybackSpeed)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug' after round trip, got %s", loaded.Logging.Level)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
