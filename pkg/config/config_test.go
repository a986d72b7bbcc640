package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies sane defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChanVese.Iterations <= 0 {
		t.Errorf("Expected positive default iterations, got %d", cfg.ChanVese.Iterations)
	}
	if cfg.Preprocess.NormalizeLow >= cfg.Preprocess.NormalizeHigh {
		t.Errorf("Default percentile bounds out of order: %g >= %g",
			cfg.Preprocess.NormalizeLow, cfg.Preprocess.NormalizeHigh)
	}
	if cfg.Seed.Method != "z" {
		t.Errorf("Expected default seed method z, got %q", cfg.Seed.Method)
	}
}

// TestLoadConfigMissingFile falls back to defaults.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.ChanVese.Iterations != def.ChanVese.Iterations {
		t.Errorf("Expected default iterations %d, got %d",
			def.ChanVese.Iterations, cfg.ChanVese.Iterations)
	}
}

// TestConfigRoundTrip saves and reloads a modified configuration.
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "microseg3d.yaml")

	cfg := DefaultConfig()
	cfg.ChanVese.Iterations = 42
	cfg.Seed.Method = "intensity"
	cfg.Preprocess.SmoothSigma = 2.5

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.ChanVese.Iterations != 42 {
		t.Errorf("Expected 42 iterations, got %d", loaded.ChanVese.Iterations)
	}
	if loaded.Seed.Method != "intensity" {
		t.Errorf("Expected intensity method, got %q", loaded.Seed.Method)
	}
	if loaded.Preprocess.SmoothSigma != 2.5 {
		t.Errorf("Expected sigma 2.5, got %g", loaded.Preprocess.SmoothSigma)
	}
}

// TestLoadConfigPartialOverlay keeps defaults for unset keys.
func TestLoadConfigPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("chanVese:\n  iterations: 7\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ChanVese.Iterations != 7 {
		t.Errorf("Expected overridden iterations 7, got %d", cfg.ChanVese.Iterations)
	}
	if cfg.Seed.Method != "z" {
		t.Errorf("Unset key should keep default, got %q", cfg.Seed.Method)
	}
}
