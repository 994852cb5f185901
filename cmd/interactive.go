package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/pkg/display"
)

// RenderInteractive shows the progressive render in a window. Escape or
// closing the window quits, R restarts accumulation.
func RenderInteractive(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	runCtx, cancel := interruptContext()
	defer cancel()

	hook := newFrameHook(r, cfg, 0, 0)
	err = display.Run(runCtx, r, display.Options{
		Title:   cfg.Display.Title,
		Scale:   cfg.Display.Scale,
		OnFrame: hook.OnFrame,
	})
	if err != nil {
		return err
	}

	displayRenderStats(r)
	return nil
}
