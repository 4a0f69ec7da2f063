package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Terrain defaults
	if cfg.Terrain.Resolution != 129 {
		t.Errorf("expected resolution 129, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.Size.Y != 100 {
		t.Errorf("expected height scale 100, got %v", cfg.Terrain.Size.Y)
	}

	// Stroke defaults
	if cfg.Stroke.MinSpacing != 1 {
		t.Errorf("expected min spacing 1, got %v", cfg.Stroke.MinSpacing)
	}
	if cfg.Stroke.EndpointTolerance <= cfg.Stroke.InteriorTolerance {
		t.Errorf("endpoint tolerance %v should exceed interior tolerance %v",
			cfg.Stroke.EndpointTolerance, cfg.Stroke.InteriorTolerance)
	}
	if cfg.Stroke.SizeMin != 0.2 || cfg.Stroke.SizeMax != 2 {
		t.Errorf("expected size range [0.2, 2], got [%v, %v]", cfg.Stroke.SizeMin, cfg.Stroke.SizeMax)
	}
	if cfg.Stroke.DiscardVolume != 20 {
		t.Errorf("expected discard volume 20, got %v", cfg.Stroke.DiscardVolume)
	}

	// Brush defaults
	if cfg.Brush.FillPatch != 20 {
		t.Errorf("expected fill patch 20, got %d", cfg.Brush.FillPatch)
	}

	// Refine defaults
	if cfg.Refine.Mode != "terrace" {
		t.Errorf("expected refine mode 'terrace', got %s", cfg.Refine.Mode)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  resolution: 257
  origin: {x: -128, y: 5, z: -128}
  size: {x: 512, y: 200, z: 512}
  offset: 10

stroke:
  min_spacing: 0.5
  discard_volume: 50

brush:
  fill_patch: 16
  lower_margin: 1

commit:
  rows_per_tick: 8

refine:
  mode: passthrough

record:
  dir: "/tmp/journal"
  png: false

logging:
  level: "debug"
  log_file: "sculpt.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.Resolution != 257 {
		t.Errorf("expected resolution 257, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.Origin.X != -128 || cfg.Terrain.Origin.Y != 5 {
		t.Errorf("expected origin (-128, 5, -128), got %+v", cfg.Terrain.Origin)
	}
	if cfg.Terrain.Size.Y != 200 {
		t.Errorf("expected height scale 200, got %v", cfg.Terrain.Size.Y)
	}
	if cfg.Terrain.Offset != 10 {
		t.Errorf("expected offset 10, got %v", cfg.Terrain.Offset)
	}
	if cfg.Stroke.MinSpacing != 0.5 {
		t.Errorf("expected min spacing 0.5, got %v", cfg.Stroke.MinSpacing)
	}
	// Unset keys keep their defaults
	if cfg.Stroke.RidgeThreshold != 0.2 {
		t.Errorf("expected ridge threshold to stay 0.2, got %v", cfg.Stroke.RidgeThreshold)
	}
	if cfg.Brush.FillPatch != 16 {
		t.Errorf("expected fill patch 16, got %d", cfg.Brush.FillPatch)
	}
	if cfg.Commit.RowsPerTick != 8 {
		t.Errorf("expected 8 rows per tick, got %d", cfg.Commit.RowsPerTick)
	}
	if cfg.Refine.Mode != "passthrough" {
		t.Errorf("expected passthrough refine, got %s", cfg.Refine.Mode)
	}
	if cfg.Record.Dir != "/tmp/journal" || cfg.Record.PNG {
		t.Errorf("unexpected record config %+v", cfg.Record)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "sculpt.log" {
		t.Errorf("expected log file 'sculpt.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  resolution: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny resolution", func(c *Config) { c.Terrain.Resolution = 1 }},
		{"flat size", func(c *Config) { c.Terrain.Size.Y = 0 }},
		{"inverted size range", func(c *Config) { c.Stroke.SizeMin = 3 }},
		{"zero curve", func(c *Config) { c.Stroke.CurveMin = 0 }},
		{"unknown refine", func(c *Config) { c.Refine.Mode = "neural" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

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
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "terrasketch.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  resolution: 65\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find terrasketch.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "resolution flag",
			setup: func() { *flagResolution = 513 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Resolution != 513 {
					t.Errorf("expected resolution 513, got %d", cfg.Terrain.Resolution)
				}
			},
			teardown: func() { *flagResolution = 0 },
		},
		{
			name:  "record flag",
			setup: func() { *flagRecord = "/tmp/rec" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Record.Dir != "/tmp/rec" {
					t.Errorf("expected record dir /tmp/rec, got %s", cfg.Record.Dir)
				}
			},
			teardown: func() { *flagRecord = "" },
		},
		{
			name:  "refine flag",
			setup: func() { *flagRefine = "passthrough" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.Mode != "passthrough" {
					t.Errorf("expected passthrough, got %s", cfg.Refine.Mode)
				}
			},
			teardown: func() { *flagRefine = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  resolution: 65
  offset: 3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagResolution = 257
	defer func() {
		*flagConfig = ""
		*flagResolution = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Resolution from flag, not file
	if cfg.Terrain.Resolution != 257 {
		t.Errorf("expected resolution 257 from flag, got %d", cfg.Terrain.Resolution)
	}
	// Offset from file since no flag override
	if cfg.Terrain.Offset != 3 {
		t.Errorf("expected offset 3 from file, got %v", cfg.Terrain.Offset)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Resolution = 33
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}
	if loaded.Terrain.Resolution != 33 {
		t.Errorf("expected resolution 33 after save, got %d", loaded.Terrain.Resolution)
	}
}
