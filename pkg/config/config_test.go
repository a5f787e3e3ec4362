package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/extentvol/internal/bytesize"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
volume:
  block_size: 4Ki
  slice_size: 1Mi

logging:
  level: "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Volume.BlockSize != 4*bytesize.KiB {
		t.Errorf("block_size = %v, want %v", cfg.Volume.BlockSize, 4*bytesize.KiB)
	}
	if cfg.Volume.SliceSize != 1*bytesize.MiB {
		t.Errorf("slice_size = %v, want %v", cfg.Volume.SliceSize, 1*bytesize.MiB)
	}
	if cfg.Volume.PreallocSize != 64*bytesize.KiB {
		t.Errorf("prealloc_size default = %v, want %v", cfg.Volume.PreallocSize, 64*bytesize.KiB)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("logging.level = %q, want %q", cfg.Logging.Level, "DEBUG")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("logging.format default = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("expected no error loading default config, got: %v", err)
	}
	if cfg.Volume.BlockSize != 4*bytesize.KiB {
		t.Errorf("default block_size = %v, want %v", cfg.Volume.BlockSize, 4*bytesize.KiB)
	}
}

func TestLoad_RejectsSliceSizeNotMultipleOfBlockSize(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
volume:
  block_size: 4Ki
  slice_size: 5000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for slice_size not a multiple of block_size")
	}
}

func TestLoad_RejectsBlockSizeNotPowerOfTwo(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
volume:
  block_size: 4097
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for non-power-of-two block_size")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Logging.Level = "WARN"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Logging.Level != "WARN" {
		t.Errorf("loaded logging.level = %q, want %q", loaded.Logging.Level, "WARN")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}
