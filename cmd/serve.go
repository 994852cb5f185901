package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-adaptive-pathtracer/pkg/log"
	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
	"github.com/df07/go-adaptive-pathtracer/web/server"
)

const publishInterval = 100 * time.Millisecond

// previewLoop publishes frames to the server and applies scene changes
// requested through it. It runs on the goroutine driving the renderer.
type previewLoop struct {
	renderer    *renderer.ProgressiveRenderer
	server      *server.Server
	hook        *frameHook
	lastPublish time.Time
}

func (p *previewLoop) OnFrame(result renderer.FrameResult) error {
	select {
	case next := <-p.server.SceneChanges():
		if err := p.renderer.SetScene(next); err != nil {
			logger.Errorf("scene change failed: %v", err)
		} else {
			logger.Noticef("now rendering %q", next.Name)
		}
		return nil
	default:
	}

	if result.Frame == 1 || time.Since(p.lastPublish) >= publishInterval {
		p.server.Publish(p.renderer, result)
		p.lastPublish = time.Now()
	}
	return p.hook.OnFrame(result)
}

// Serve renders headlessly while an HTTP server exposes the latest frame,
// statistics, the log console and scene selection.
func Serve(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	console := server.NewConsoleBuffer(ctx.Int("console-lines"))
	log.AddMirror(console)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	srv := server.NewServer(cfg.Server.Address, cfg.Scene.Directory, cfg.SceneOptions(), console)
	loop := &previewLoop{
		renderer: r,
		server:   srv,
		hook:     newFrameHook(r, cfg, 0, 0),
	}

	runCtx, cancel := interruptContext()
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		err := r.Run(gctx, loop.OnFrame)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	displayRenderStats(r)
	return nil
}
