package renderer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
	"github.com/df07/go-adaptive-pathtracer/pkg/integrator"
	"github.com/df07/go-adaptive-pathtracer/pkg/log"
	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

var logger = log.New("renderer")

var (
	// ErrInvalidConfig is returned for an unusable renderer configuration
	ErrInvalidConfig = errors.New("renderer: invalid config")

	// ErrClosed is returned when rendering after Close
	ErrClosed = errors.New("renderer: renderer closed")

	// ErrStopRendering can be returned by a frame callback to end Run without error
	ErrStopRendering = errors.New("renderer: stop rendering")
)

// Timer names recorded by the renderer
const (
	TimerSchedule = "schedule"
	TimerSample   = "sample"
	TimerDisplay  = "display"
)

// Config contains configuration for progressive rendering
type Config struct {
	Width, Height int
	MaxDepth      int   // Bounce cutoff, 0 = integrator default
	Seed          int64 // Seeds the scheduler and the worker samplers
	Workers       int   // Number of parallel workers (0 = use CPU count)
	Scheduler     SchedulerConfig
	Clock         Clock // Timing source, nil = SystemClock
}

// DefaultConfig returns a 640x480 configuration
func DefaultConfig() Config {
	return Config{
		Width:     640,
		Height:    480,
		MaxDepth:  integrator.DefaultMaxDepth,
		Seed:      1,
		Workers:   0,
		Scheduler: DefaultSchedulerConfig(),
	}
}

// ProgressiveRenderer accumulates samples into a continuously refining image
type ProgressiveRenderer struct {
	scene       *scene.Scene
	config      Config
	integrator  integrator.Integrator
	scheduler   *AdaptiveScheduler
	pixels      []PixelWorkItem // Row-major accumulators
	frameBuffer *FrameBuffer
	workerPool  *WorkerPool
	timers      *Timers
	clock       Clock
	frame       int
	samples     int
	closed      bool
}

// NewProgressiveRenderer creates a renderer for the scene. The scene's BVH is
// built if it has not been already.
func NewProgressiveRenderer(s *scene.Scene, config Config) (*ProgressiveRenderer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, config.Width, config.Height)
	}
	if config.Clock == nil {
		config.Clock = SystemClock
	}
	if s.BVH == nil {
		if err := s.Preprocess(rand.New(rand.NewSource(config.Seed))); err != nil {
			return nil, err
		}
	}

	scheduler, err := NewAdaptiveScheduler(config.Width*config.Height, config.Scheduler, rand.New(rand.NewSource(config.Seed)))
	if err != nil {
		return nil, err
	}

	pixels := make([]PixelWorkItem, config.Width*config.Height)
	for i := range pixels {
		pixels[i].X = i % config.Width
		pixels[i].Y = i / config.Width
	}

	pr := &ProgressiveRenderer{
		scene:       s,
		config:      config,
		integrator:  integrator.NewPathTracingIntegrator(config.MaxDepth),
		scheduler:   scheduler,
		pixels:      pixels,
		frameBuffer: NewFrameBuffer(config.Width, config.Height),
		workerPool:  NewWorkerPool(config.Workers, config.Seed),
		timers:      NewTimers(config.Clock),
		clock:       config.Clock,
	}
	pr.workerPool.Start()

	logger.Infof("rendering scene %q at %dx%d with %d workers", s.Name, config.Width, config.Height, pr.workerPool.GetNumWorkers())
	return pr, nil
}

// samplePixel takes item.Samples new samples of one pixel. A pixel is owned by
// a single work item per frame so the accumulator needs no locking.
func (pr *ProgressiveRenderer) samplePixel(item WorkItem, sampler core.Sampler) {
	pixel := &pr.pixels[item.Index]
	width := float64(pr.config.Width)
	height := float64(pr.config.Height)

	for i := 0; i < item.Samples; i++ {
		jitter := sampler.Get2D()
		u := (float64(pixel.X) + jitter.X) / width
		// Image rows go top to bottom, camera v goes bottom to top
		v := (float64(pr.config.Height-1-pixel.Y) + jitter.Y) / height
		ray := pr.scene.Camera.GetRay(u, v, sampler)
		pixel.AddSample(pr.integrator.RayColor(ray, pr.scene, sampler))
	}
}

// RenderFrame renders one timed frame and refreshes the touched pixels
func (pr *ProgressiveRenderer) RenderFrame() (FrameResult, error) {
	if pr.closed {
		return FrameResult{}, ErrClosed
	}

	pr.timers.Enter(FrameTimer)

	pr.timers.Enter(TimerSchedule)
	items := pr.scheduler.Next()
	for _, item := range items {
		pr.pixels[item.Index].Pending = true
	}

	pr.timers.Transition(TimerSchedule, TimerSample)
	chunks := pr.workerPool.Split(items)
	for i, chunk := range chunks {
		pr.workerPool.SubmitTask(SampleTask{TaskID: i, Items: chunk, Sample: pr.samplePixel})
	}
	samples := 0
	for range chunks {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return FrameResult{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		samples += result.Samples
	}

	pr.timers.Transition(TimerSample, TimerDisplay)
	for _, item := range items {
		pixel := &pr.pixels[item.Index]
		pixel.Pending = false
		pr.frameBuffer.SetPixel(pixel)
	}
	pr.timers.Exit(TimerDisplay)

	duration := pr.timers.Exit(FrameTimer)
	pr.scheduler.Record(duration)

	pr.frame++
	pr.samples += samples

	result := FrameResult{
		Frame:    pr.frame,
		Budget:   pr.scheduler.Budget(),
		Pixels:   len(items),
		Duration: duration,
		Sweeps:   pr.scheduler.Sweeps(),
		Samples:  pr.samples,
	}
	logger.Debugf("frame %d: %d samples over %d pixels in %v", result.Frame, result.Budget, result.Pixels, result.Duration)
	return result, nil
}

// Run renders frames until the context is cancelled or onFrame returns an
// error. Cancellation is only observed between frames. Returning
// ErrStopRendering from onFrame ends the loop with a nil error.
func (pr *ProgressiveRenderer) Run(ctx context.Context, onFrame func(FrameResult) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := pr.RenderFrame()
		if err != nil {
			return err
		}
		if onFrame == nil {
			continue
		}
		if err := onFrame(result); err != nil {
			if errors.Is(err, ErrStopRendering) {
				return nil
			}
			return err
		}
	}
}

// Reset clears all accumulators, the image and the scheduler's sweep
func (pr *ProgressiveRenderer) Reset() {
	for i := range pr.pixels {
		pr.pixels[i].Reset()
	}
	pr.frameBuffer.Clear()
	pr.scheduler.Reset()
	pr.frame = 0
	pr.samples = 0
}

// SetScene swaps the rendered scene between frames and resets the image
func (pr *ProgressiveRenderer) SetScene(s *scene.Scene) error {
	if s.BVH == nil {
		if err := s.Preprocess(rand.New(rand.NewSource(pr.config.Seed))); err != nil {
			return err
		}
	}
	pr.scene = s
	pr.Reset()
	logger.Infof("switched to scene %q", s.Name)
	return nil
}

// Close stops the worker pool
func (pr *ProgressiveRenderer) Close() {
	if pr.closed {
		return
	}
	pr.closed = true
	pr.workerPool.Stop()
}

// FrameBuffer returns the displayable image
func (pr *ProgressiveRenderer) FrameBuffer() *FrameBuffer { return pr.frameBuffer }

// Timers returns the performance timers
func (pr *ProgressiveRenderer) Timers() *Timers { return pr.timers }

// Scheduler returns the sample scheduler
func (pr *ProgressiveRenderer) Scheduler() *AdaptiveScheduler { return pr.scheduler }

// Scene returns the scene being rendered
func (pr *ProgressiveRenderer) Scene() *scene.Scene { return pr.scene }

// Frames returns the number of frames since the last reset
func (pr *ProgressiveRenderer) Frames() int { return pr.frame }

// Stats summarizes the per-pixel sample counts
func (pr *ProgressiveRenderer) Stats() RenderStats {
	return calculateStats(pr.pixels)
}

// Pixel returns the accumulator at (x, y); y = 0 is the top row
func (pr *ProgressiveRenderer) Pixel(x, y int) PixelWorkItem {
	return pr.pixels[y*pr.config.Width+x]
}

// Color returns the gamma corrected average color at (x, y) without quantization
func (pr *ProgressiveRenderer) Color(x, y int) core.Vec3 {
	return pr.pixels[y*pr.config.Width+x].GetColor().Sqrt()
}

// AverageLuminance returns the mean luminance of the gamma corrected accumulators
func (pr *ProgressiveRenderer) AverageLuminance() float64 {
	total := 0.0
	for i := range pr.pixels {
		total += pr.pixels[i].GetColor().Sqrt().Luminance()
	}
	return total / float64(len(pr.pixels))
}
