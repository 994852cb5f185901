package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

// ErrInvalid is returned by Validate
var ErrInvalid = errors.New("config: invalid configuration")

// Config represents the main configuration
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Scene     SceneConfig     `yaml:"scene"`
	Output    OutputConfig    `yaml:"output"`
	Stats     StatsConfig     `yaml:"stats"`
	Display   DisplayConfig   `yaml:"display"`
	Server    ServerConfig    `yaml:"server"`
}

// RenderConfig contains image and integrator settings
type RenderConfig struct {
	Width    int   `yaml:"width"`
	Height   int   `yaml:"height"`
	MaxDepth int   `yaml:"max_depth"`
	Seed     int64 `yaml:"seed"`
	Workers  int   `yaml:"workers"` // 0 means one per CPU
}

// SchedulerConfig contains the adaptive sample budget settings
type SchedulerConfig struct {
	TargetFrameMs float64 `yaml:"target_frame_ms"`
	InitialBudget int     `yaml:"initial_budget"`
	MinBudget     int     `yaml:"min_budget"`
	MaxBudget     int     `yaml:"max_budget"` // 0 means unlimited
	WindowSize    int     `yaml:"window_size"`
	Damping       float64 `yaml:"damping"`
	MaxGrowth     float64 `yaml:"max_growth"` // 0 means uncapped
}

// SceneConfig selects the scene to render
type SceneConfig struct {
	Name      string `yaml:"name"`      // Builtin name or path to a scene file
	Directory string `yaml:"directory"` // Searched for scene files by the scenes command and the server
}

// OutputConfig controls the per-frame PNG dump
type OutputConfig struct {
	Prefix string `yaml:"prefix"` // Empty disables the dump
	Frames int    `yaml:"frames"` // Frames rendered by the render command
}

// StatsConfig controls the periodic timer report
type StatsConfig struct {
	Interval int `yaml:"interval"` // Frames between reports, 0 disables them
}

// DisplayConfig contains interactive window settings
type DisplayConfig struct {
	Title string  `yaml:"title"`
	Scale float64 `yaml:"scale"`
}

// ServerConfig contains web preview settings
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Default creates a default configuration
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:    640,
			Height:   480,
			MaxDepth: 50,
			Seed:     1,
			Workers:  0,
		},
		Scheduler: SchedulerConfig{
			TargetFrameMs: 1000.0 / 60.0,
			InitialBudget: 1024,
			MinBudget:     1,
			MaxBudget:     0,
			WindowSize:    renderer.DefaultWindowSize,
			Damping:       0.99,
			MaxGrowth:     0,
		},
		Scene: SceneConfig{
			Name:      "balls",
			Directory: "scenes",
		},
		Output: OutputConfig{
			Prefix: "",
			Frames: 100,
		},
		Stats: StatsConfig{
			Interval: 10,
		},
		Display: DisplayConfig{
			Title: "go-adaptive-pathtracer",
			Scale: 1,
		},
		Server: ServerConfig{
			Address: ":8080",
		},
	}
}

// Load loads the configuration from a file. The defaults are returned
// alongside any error.
func Load(filePath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return Default(), fmt.Errorf("error parsing config %s: %w", filePath, err)
	}
	return config, nil
}

// Save saves the configuration to a file
func Save(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate checks every section
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	case c.Render.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth %d", ErrInvalid, c.Render.MaxDepth)
	case c.Render.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Render.Workers)
	case c.Output.Frames < 0:
		return fmt.Errorf("%w: output frames %d", ErrInvalid, c.Output.Frames)
	case c.Stats.Interval < 0:
		return fmt.Errorf("%w: stats interval %d", ErrInvalid, c.Stats.Interval)
	case c.Display.Scale <= 0:
		return fmt.Errorf("%w: display scale %g", ErrInvalid, c.Display.Scale)
	case c.Scene.Name == "":
		return fmt.Errorf("%w: no scene selected", ErrInvalid)
	}

	if err := c.SchedulerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// SchedulerConfig converts the scheduler section
func (c *Config) SchedulerConfig() renderer.SchedulerConfig {
	return renderer.SchedulerConfig{
		TargetFrameTime: time.Duration(c.Scheduler.TargetFrameMs * float64(time.Millisecond)),
		InitialBudget:   c.Scheduler.InitialBudget,
		MinBudget:       c.Scheduler.MinBudget,
		MaxBudget:       c.Scheduler.MaxBudget,
		WindowSize:      c.Scheduler.WindowSize,
		Damping:         c.Scheduler.Damping,
		MaxGrowth:       c.Scheduler.MaxGrowth,
	}
}

// RendererConfig converts the render and scheduler sections
func (c *Config) RendererConfig() renderer.Config {
	return renderer.Config{
		Width:     c.Render.Width,
		Height:    c.Render.Height,
		MaxDepth:  c.Render.MaxDepth,
		Seed:      c.Render.Seed,
		Workers:   c.Render.Workers,
		Scheduler: c.SchedulerConfig(),
	}
}

// SceneOptions returns the options used to build the scene for this image size
func (c *Config) SceneOptions() scene.Options {
	return scene.Options{
		AspectRatio: float64(c.Render.Width) / float64(c.Render.Height),
		Seed:        c.Render.Seed,
	}
}
