package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNopBeforeInit(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("package loggers must be usable before Init")
	}
	// Must not panic.
	Named("brush").Debug("dab skipped")
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "sculpt.log")

	// lumberjack's smallest size is 1MB; write past it once.
	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	payload := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("commit %d rows %s", i, payload)
	}
	Sync()

	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("current log file: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	rotated := 0
	for _, e := range entries {
		name := e.Name()
		if name == "sculpt.log" || !strings.HasPrefix(name, "sculpt") {
			continue
		}
		rotated++
		// Backups are named sculpt-<timestamp>.log
		if !strings.Contains(name, "-20") {
			t.Errorf("backup %s lacks a timestamp", name)
		}
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}

	tests := []struct {
		level string
		first int // index into all of the lowest level written
	}{
		{"error", 3},
		{"warn", 2},
		{"info", 1},
		{"debug", 0},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(dir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("stroke extended")
			Info("stroke finished")
			Warn("commit rolled back")
			Error("journal close failed")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			for i, lvl := range all {
				got := strings.Contains(string(content), lvl)
				if want := i >= tt.first; got != want {
					t.Errorf("level %s present = %v, want %v", lvl, got, want)
				}
			}
		})
	}
}

func TestNamedLoggerWritesComponent(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "named.log")

	cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
	if err := InitWithFileConfig("info", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Named("sculpt").Info("commit finished")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "sculpt") {
		t.Errorf("expected component name in log output, got %q", content)
	}
}

func TestParseLevelAliases(t *testing.T) {
	if parseLevel(" WARNING ") != parseLevel("warn") {
		t.Error("expected 'WARNING' to parse as warn")
	}
	if parseLevel("bogus") != parseLevel("info") {
		t.Error("expected unknown level to fall back to info")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
