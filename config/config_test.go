package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wudi/pdfdeck/compress"
)

func TestDefaultMirrorsPipelineDefaults(t *testing.T) {
	cfg := Default()
	p := compress.DefaultParams()

	if cfg.Compress.StructuralScale != p.StructuralScale {
		t.Errorf("structural scale %v, want %v", cfg.Compress.StructuralScale, p.StructuralScale)
	}
	if cfg.Compress.Extreme.Quality != 0.15 || cfg.Compress.Extreme.Scale != 0.7 {
		t.Errorf("extreme settings %+v", cfg.Compress.Extreme)
	}
	if cfg.Limits.MaxSizeMB != 100 {
		t.Errorf("max size %d MB, want 100", cfg.Limits.MaxSizeMB)
	}
}

func TestLoadOverridesOnlyNamedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfdeck.toml")
	content := `
[compress]
structural_scale = 0.8

[limits]
max_size_mb = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Compress.StructuralScale != 0.8 {
		t.Errorf("override lost: %v", cfg.Compress.StructuralScale)
	}
	if cfg.Limits.MaxSizeMB != 10 {
		t.Errorf("override lost: %v", cfg.Limits.MaxSizeMB)
	}
	// Unnamed values keep their defaults.
	if cfg.Compress.EscalateBelow != 0.20 {
		t.Errorf("default lost: %v", cfg.Compress.EscalateBelow)
	}
	if cfg.Compress.Medium.Quality != 0.50 {
		t.Errorf("default lost: %v", cfg.Compress.Medium.Quality)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()

	params := cfg.Compress.Params()
	if params.Raster[compress.LevelHigh].Quality != 0.30 {
		t.Errorf("high quality %v", params.Raster[compress.LevelHigh].Quality)
	}

	c := cfg.Limits.Constraints()
	if c.MaxSize != 100<<20 {
		t.Errorf("max size %d", c.MaxSize)
	}
	if c.MinPages != 1 {
		t.Errorf("min pages %d", c.MinPages)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
