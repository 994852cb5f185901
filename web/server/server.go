package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-adaptive-pathtracer/pkg/log"
	"github.com/df07/go-adaptive-pathtracer/pkg/renderer"
	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

var logger = log.New("server")

// Stats represents render statistics of the latest published frame
type Stats struct {
	Scene          string  `json:"scene"`
	Frame          int     `json:"frame"`
	Budget         int     `json:"budget"`
	FrameMs        float64 `json:"frameMs"`
	MeanFrameMs    float64 `json:"meanFrameMs"`
	Sweeps         int     `json:"sweeps"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	Luminance      float64 `json:"luminance"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

// SceneRequest selects the scene to render
type SceneRequest struct {
	ID string `json:"id"` // Builtin name or "file:<name>" from /api/scenes
}

// Server is a live preview of a running progressive render
type Server struct {
	echo     *echo.Echo
	address  string
	sceneDir string
	options  scene.Options
	console  *ConsoleBuffer
	started  time.Time

	mu          sync.RWMutex
	frame       *image.RGBA
	stats       Stats
	scene       *scene.Scene
	subscribers map[chan Stats]struct{}

	sceneChanges chan *scene.Scene
}

// NewServer creates a preview server. Scenes selected through the API are
// built with opts and looked up in sceneDir.
func NewServer(address, sceneDir string, opts scene.Options, console *ConsoleBuffer) *Server {
	if console == nil {
		console = NewConsoleBuffer(0)
	}
	s := &Server{
		echo:         echo.New(),
		address:      address,
		sceneDir:     sceneDir,
		options:      opts,
		console:      console,
		started:      time.Now(),
		subscribers:  make(map[chan Stats]struct{}),
		sceneChanges: make(chan *scene.Scene, 1),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debugf("%s %s -> %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/frame.png", s.handleFrame)
	s.echo.GET("/api/stats", s.handleStats)
	s.echo.GET("/api/events", s.handleEvents)
	s.echo.GET("/api/console", s.handleConsole)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.POST("/api/scene", s.handleSceneChange)
	s.echo.GET("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Noticef("serving preview on http://localhost%s", s.address)
		errCh <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Publish records the latest frame of the renderer. It must be called from
// the goroutine driving the renderer, between frames.
func (s *Server) Publish(r *renderer.ProgressiveRenderer, result renderer.FrameResult) {
	snapshot := r.FrameBuffer().Snapshot()
	renderStats := r.Stats()

	stats := Stats{
		Scene:          r.Scene().Name,
		Frame:          result.Frame,
		Budget:         result.Budget,
		FrameMs:        float64(result.Duration) / float64(time.Millisecond),
		MeanFrameMs:    float64(r.Scheduler().MeanFrameTime()) / float64(time.Millisecond),
		Sweeps:         result.Sweeps,
		TotalPixels:    renderStats.TotalPixels,
		TotalSamples:   int64(renderStats.TotalSamples),
		AverageSamples: renderStats.AverageSamples,
		MinSamples:     renderStats.MinSamples,
		MaxSamplesUsed: renderStats.MaxSamplesUsed,
		Luminance:      renderer.CalculateAverageLuminance(snapshot),
		ElapsedMs:      time.Since(s.started).Milliseconds(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = snapshot
	s.stats = stats
	s.scene = r.Scene()

	for ch := range s.subscribers {
		select {
		case ch <- stats:
		default:
			// Slow client, skip this frame
		}
	}
}

// SceneChanges delivers scenes selected through the API
func (s *Server) SceneChanges() <-chan *scene.Scene {
	return s.sceneChanges
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFrame(c echo.Context) error {
	s.mu.RLock()
	frame := s.frame
	s.mu.RUnlock()

	if frame == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no frame rendered yet"})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode image"})
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleStats(c echo.Context) error {
	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) subscribe() chan Stats {
	ch := make(chan Stats, 4)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan Stats) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

// handleEvents streams the stats of every published frame with SSE
func (s *Server) handleEvents(c echo.Context) error {
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	updates := s.subscribe()
	defer s.unsubscribe(updates)

	ctx := c.Request().Context()
	for {
		select {
		case stats := <-updates:
			data, err := json.Marshal(stats)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data); err != nil {
				// Client disconnected during write
				return nil
			}
			w.Flush()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) handleConsole(c echo.Context) error {
	var since int64
	if value := c.QueryParam("since"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid since: " + value})
		}
		since = parsed
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": s.console.Since(since),
		"last":     s.console.LastSeq(),
	})
}

func (s *Server) handleScenes(c echo.Context) error {
	scenes, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, scenes)
}

// resolveSceneID maps an id from /api/scenes to something scene.Resolve
// accepts. Arbitrary paths are not accepted.
func (s *Server) resolveSceneID(id string) (string, error) {
	scenes, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		return "", err
	}
	for _, info := range scenes {
		if info.ID != id {
			continue
		}
		if info.Type == "file" {
			return info.FilePath, nil
		}
		return info.ID, nil
	}
	return "", fmt.Errorf("%w: %q", scene.ErrUnknownScene, id)
}

func (s *Server) handleSceneChange(c echo.Context) error {
	var req SceneRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected {\"id\": \"<scene>\"}"})
	}

	nameOrPath, err := s.resolveSceneID(req.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	next, err := scene.Resolve(nameOrPath, s.options)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	if err := next.Preprocess(nil); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	select {
	case s.sceneChanges <- next:
		logger.Noticef("scene change to %q requested", req.ID)
		return c.JSON(http.StatusAccepted, map[string]string{"scene": next.Name})
	default:
		return c.JSON(http.StatusConflict, map[string]string{"error": "a scene change is already pending"})
	}
}
