package display

import (
	"context"
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
)

type fakeRenderer struct {
	frames int
	resets int
	err    error
	fb     *renderer.FrameBuffer
}

func (f *fakeRenderer) RenderFrame() (renderer.FrameResult, error) {
	if f.err != nil {
		return renderer.FrameResult{}, f.err
	}
	f.frames++
	return renderer.FrameResult{Frame: f.frames}, nil
}

func (f *fakeRenderer) FrameBuffer() *renderer.FrameBuffer { return f.fb }

func (f *fakeRenderer) Reset() { f.resets++ }

func newTestWindow(ctx context.Context, r *fakeRenderer, onFrame func(renderer.FrameResult) error) *window {
	return &window{ctx: ctx, renderer: r, options: Options{OnFrame: onFrame}, width: 4, height: 2}
}

func TestWindowStep(t *testing.T) {
	tests := []struct {
		name       string
		in         input
		cancelled  bool
		onFrame    func(renderer.FrameResult) error
		renderErr  error
		wantErr    error
		wantFrames int
		wantResets int
	}{
		{"renders a frame", input{}, false, nil, nil, nil, 1, 0},
		{"escape quits", input{quit: true}, false, nil, nil, ebiten.Termination, 0, 0},
		{"cancelled context quits", input{}, true, nil, nil, ebiten.Termination, 0, 0},
		{"reset then render", input{reset: true}, false, nil, nil, nil, 1, 1},
		{"stop from callback", input{}, false, func(renderer.FrameResult) error { return renderer.ErrStopRendering }, nil, ebiten.Termination, 1, 0},
		{"render error", input{}, false, nil, renderer.ErrClosed, renderer.ErrClosed, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelled {
				cancel()
			}

			r := &fakeRenderer{err: tt.renderErr, fb: renderer.NewFrameBuffer(4, 2)}
			w := newTestWindow(ctx, r, tt.onFrame)

			err := w.step(tt.in)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if r.frames != tt.wantFrames || r.resets != tt.wantResets {
				t.Errorf("Expected %d frames and %d resets, got %d and %d",
					tt.wantFrames, tt.wantResets, r.frames, r.resets)
			}
		})
	}
}

func TestWindowLayout(t *testing.T) {
	w := newTestWindow(context.Background(), &fakeRenderer{}, nil)
	width, height := w.Layout(800, 600)
	if width != 4 || height != 2 {
		t.Errorf("Expected the image size 4x2, got %dx%d", width, height)
	}
}
