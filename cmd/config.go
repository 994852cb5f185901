package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/pkg/config"
	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

// loadConfig reads the --config file, if any, and applies the command line
// flags that were explicitly set on top of it.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyFlags(ctx, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every set flag into cfg. Flags a command does not define
// are never set.
func applyFlags(ctx *cli.Context, cfg *config.Config) {
	ints := []struct {
		flag string
		dst  *int
	}{
		{"width", &cfg.Render.Width},
		{"height", &cfg.Render.Height},
		{"depth", &cfg.Render.MaxDepth},
		{"workers", &cfg.Render.Workers},
		{"initial-budget", &cfg.Scheduler.InitialBudget},
		{"min-budget", &cfg.Scheduler.MinBudget},
		{"max-budget", &cfg.Scheduler.MaxBudget},
		{"frames", &cfg.Output.Frames},
		{"stats", &cfg.Stats.Interval},
	}
	for _, f := range ints {
		if ctx.IsSet(f.flag) {
			*f.dst = ctx.Int(f.flag)
		}
	}

	if ctx.IsSet("seed") {
		cfg.Render.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("target-ms") {
		cfg.Scheduler.TargetFrameMs = ctx.Float64("target-ms")
	}
	if ctx.IsSet("scale") {
		cfg.Display.Scale = ctx.Float64("scale")
	}
	if ctx.IsSet("scene") {
		cfg.Scene.Name = ctx.String("scene")
	}
	if ctx.IsSet("scene-dir") {
		cfg.Scene.Directory = ctx.String("scene-dir")
	}
	if ctx.IsSet("prefix") {
		cfg.Output.Prefix = ctx.String("prefix")
	}
	if ctx.IsSet("addr") {
		cfg.Server.Address = ctx.String("addr")
	}
}

// newRenderer builds the configured scene and a renderer for it
func newRenderer(cfg *config.Config) (*renderer.ProgressiveRenderer, error) {
	s, err := scene.Resolve(cfg.Scene.Name, cfg.SceneOptions())
	if err != nil {
		return nil, err
	}

	r, err := renderer.NewProgressiveRenderer(s, cfg.RendererConfig())
	if err != nil {
		return nil, err
	}
	logger.Noticef("rendering %q at %dx%d, max depth %d", s.Name, cfg.Render.Width, cfg.Render.Height, cfg.Render.MaxDepth)
	return r, nil
}

// WriteConfig writes the effective configuration (defaults, --config file and
// flags) as YAML.
func WriteConfig(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	path := ctx.Args().First()
	if path == "" {
		path = "pathtracer.yaml"
	}
	if _, err := os.Stat(path); err == nil && !ctx.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	logger.Noticef("wrote configuration to %s", path)
	return nil
}
