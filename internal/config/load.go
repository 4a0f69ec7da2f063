package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Terrain.Resolution < 2 {
		return fmt.Errorf("terrain.resolution must be at least 2, got %d", c.Terrain.Resolution)
	}
	if c.Terrain.Size.X <= 0 || c.Terrain.Size.Y <= 0 || c.Terrain.Size.Z <= 0 {
		return fmt.Errorf("terrain.size must be positive on every axis, got %+v", c.Terrain.Size)
	}
	if c.Stroke.SizeMin <= 0 || c.Stroke.SizeMin > c.Stroke.SizeMax {
		return fmt.Errorf("stroke size range [%v, %v] is invalid", c.Stroke.SizeMin, c.Stroke.SizeMax)
	}
	if c.Stroke.CurveMin <= 0 || c.Stroke.CurveMin > c.Stroke.CurveMax {
		return fmt.Errorf("stroke curve range [%v, %v] is invalid", c.Stroke.CurveMin, c.Stroke.CurveMax)
	}
	switch c.Refine.Mode {
	case "terrace", "passthrough":
	default:
		return fmt.Errorf("unknown refine mode %q", c.Refine.Mode)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./terrasketch.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Terrasketch")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Terrasketch")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "terrasketch")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "terrasketch")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
