package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/pkg/config"
	"github.com/df07/go-adaptive-pathtracer/pkg/output"
	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
)

// frameHook runs after every frame: it dumps the frame, prints the periodic
// timer report and decides when the render is done.
type frameHook struct {
	renderer  *renderer.ProgressiveRenderer
	writer    *output.FrameWriter
	interval  int // Frames between timer reports, 0 = never
	maxFrames int // Stop after this frame, 0 = run until interrupted
	targetSPP int // Stop once every pixel has this many samples, 0 = never
}

func newFrameHook(r *renderer.ProgressiveRenderer, cfg *config.Config, maxFrames, targetSPP int) *frameHook {
	return &frameHook{
		renderer:  r,
		writer:    output.NewFrameWriter(cfg.Output.Prefix, cfg.Output.Frames),
		interval:  cfg.Stats.Interval,
		maxFrames: maxFrames,
		targetSPP: targetSPP,
	}
}

func (h *frameHook) OnFrame(result renderer.FrameResult) error {
	if _, err := h.writer.WriteFrame(result.Frame, h.renderer.FrameBuffer().Image()); err != nil {
		return err
	}

	if h.interval > 0 && result.Frame%h.interval == 0 {
		displayTimerStats(h.renderer.Timers().Report())
	}

	if h.maxFrames > 0 && result.Frame >= h.maxFrames {
		return renderer.ErrStopRendering
	}
	if h.targetSPP > 0 && h.renderer.Stats().MinSamples >= h.targetSPP {
		logger.Infof("reached %d samples per pixel after %d frames", h.targetSPP, result.Frame)
		return renderer.ErrStopRendering
	}
	return nil
}

// interruptContext is cancelled on Ctrl-C
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// RenderFrames runs a headless progressive render for a fixed number of
// frames or until a target sample count is reached.
func RenderFrames(ctx *cli.Context) error {
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

	if ctx.Bool("host-info") {
		displayHostInfo()
	}

	hook := newFrameHook(r, cfg, cfg.Output.Frames, ctx.Int("spp"))
	if hook.maxFrames == 0 && hook.targetSPP == 0 {
		logger.Notice("no frame limit or spp target, rendering until interrupted")
	}

	runCtx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	err = r.Run(runCtx, hook.OnFrame)
	if errors.Is(err, context.Canceled) {
		logger.Notice("interrupted")
		err = nil
	}
	if err != nil {
		return err
	}
	logger.Noticef("rendered %d frames in %v", r.Frames(), time.Since(start))

	displayTimerStats(r.Timers().Report())
	displayRenderStats(r)

	if out := ctx.String("out"); out != "" {
		if err := output.SavePNG(out, r.FrameBuffer().Image()); err != nil {
			return err
		}
		logger.Noticef("saved final image to %s", out)
	}
	return nil
}
