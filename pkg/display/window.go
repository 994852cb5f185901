// Package display shows a progressive render in a desktop window.
package display

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-adaptive-pathtracer/pkg/log"
	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
)

var logger = log.New("display")

// Renderer is the part of renderer.ProgressiveRenderer the window drives
type Renderer interface {
	RenderFrame() (renderer.FrameResult, error)
	FrameBuffer() *renderer.FrameBuffer
	Reset()
}

// Options configures the window
type Options struct {
	Title   string
	Scale   float64                          // Window size relative to the image
	OnFrame func(renderer.FrameResult) error // Called after every frame
}

type input struct {
	quit  bool
	reset bool
}

type window struct {
	ctx      context.Context
	renderer Renderer
	options  Options
	width    int
	height   int
	texture  *ebiten.Image
}

// Run opens the window and renders one frame per tick until the window is
// closed, Escape is pressed or ctx is cancelled. It blocks and must be called
// from the main goroutine.
func Run(ctx context.Context, r Renderer, options Options) error {
	if options.Scale <= 0 {
		options.Scale = 1
	}
	fb := r.FrameBuffer()
	w := &window{
		ctx:      ctx,
		renderer: r,
		options:  options,
		width:    fb.Width(),
		height:   fb.Height(),
	}

	ebiten.SetWindowTitle(options.Title)
	ebiten.SetWindowSize(int(float64(w.width)*options.Scale), int(float64(w.height)*options.Scale))
	ebiten.SetTPS(ebiten.SyncWithFPS)

	logger.Infof("opening %dx%d window", w.width, w.height)
	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func pollInput() input {
	return input{
		quit:  inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		reset: inpututil.IsKeyJustPressed(ebiten.KeyR),
	}
}

func (w *window) Update() error {
	return w.step(pollInput())
}

// step advances one tick; ebiten.Termination ends the game loop
func (w *window) step(in input) error {
	if in.quit || w.ctx.Err() != nil {
		return ebiten.Termination
	}
	if in.reset {
		logger.Notice("resetting accumulated samples")
		w.renderer.Reset()
	}

	result, err := w.renderer.RenderFrame()
	if err != nil {
		return err
	}
	if w.options.OnFrame != nil {
		if err := w.options.OnFrame(result); err != nil {
			if errors.Is(err, renderer.ErrStopRendering) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	if w.texture == nil {
		w.texture = ebiten.NewImage(w.width, w.height)
	}
	w.texture.WritePixels(w.renderer.FrameBuffer().Image().Pix)
	screen.DrawImage(w.texture, nil)
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.width, w.height
}
