package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
	if cfg.Render.Width != 640 || cfg.Render.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}

	rc := cfg.RendererConfig()
	if rc.Scheduler.TargetFrameTime < 16*time.Millisecond || rc.Scheduler.TargetFrameTime > 17*time.Millisecond {
		t.Errorf("Expected a 60Hz target, got %v", rc.Scheduler.TargetFrameTime)
	}
	if rc.MaxDepth != 50 || rc.Scheduler.Damping != 0.99 {
		t.Errorf("Unexpected renderer config %+v", rc)
	}

	opts := cfg.SceneOptions()
	if opts.AspectRatio != 640.0/480.0 {
		t.Errorf("Expected aspect ratio 4/3, got %f", opts.AspectRatio)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Render.Width = 320
	cfg.Scheduler.MaxBudget = 5000
	cfg.Output.Prefix = "frames/out_"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("render:\n  width: 200\nscene:\n  name: random\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.Width != 200 || cfg.Render.Height != 480 {
		t.Errorf("Expected 200x480, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Scene.Name != "random" || cfg.Stats.Interval != 10 {
		t.Errorf("Expected overrides merged with defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "missing.yaml"))
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected a not-exist error, got %v", err)
		}
		if cfg == nil || cfg.Render.Width != 640 {
			t.Errorf("Expected defaults alongside the error")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("render:\n  widht: 10\n"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err == nil {
			t.Errorf("Expected a parse error for an unknown field")
		}
		if cfg.Render.Width != 640 {
			t.Errorf("Expected defaults after a parse error, got %d", cfg.Render.Width)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"negative depth", func(c *Config) { c.Render.MaxDepth = -1 }},
		{"negative workers", func(c *Config) { c.Render.Workers = -2 }},
		{"negative frames", func(c *Config) { c.Output.Frames = -1 }},
		{"negative interval", func(c *Config) { c.Stats.Interval = -1 }},
		{"zero scale", func(c *Config) { c.Display.Scale = 0 }},
		{"no scene", func(c *Config) { c.Scene.Name = "" }},
		{"zero target", func(c *Config) { c.Scheduler.TargetFrameMs = 0 }},
		{"max below min", func(c *Config) { c.Scheduler.MinBudget = 10; c.Scheduler.MaxBudget = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}

	cfg := Default()
	cfg.Scheduler.TargetFrameMs = -1
	if err := cfg.Validate(); !errors.Is(err, renderer.ErrInvalidScheduler) {
		t.Errorf("Expected the scheduler error to be wrapped, got %v", err)
	}
}
