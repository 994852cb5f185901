package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/df07/go-adaptive-pathtracer/pkg/log"
)

var logger = log.New("output")

// FrameWriter dumps numbered frames as <prefix><frame:05>.png
type FrameWriter struct {
	Prefix    string // Path prefix; may contain directories
	MaxFrames int    // Last frame written, 0 = no limit
}

// NewFrameWriter creates a frame writer
func NewFrameWriter(prefix string, maxFrames int) *FrameWriter {
	return &FrameWriter{Prefix: prefix, MaxFrames: maxFrames}
}

// Path returns the file name of a frame
func (w *FrameWriter) Path(frame int) string {
	return fmt.Sprintf("%s%05d.png", w.Prefix, frame)
}

// Enabled reports whether the frame would be written
func (w *FrameWriter) Enabled(frame int) bool {
	if w.Prefix == "" || frame < 1 {
		return false
	}
	return w.MaxFrames == 0 || frame <= w.MaxFrames
}

// WriteFrame saves the image for the frame if it is within range. It returns
// the written path, or "" when the frame was skipped.
func (w *FrameWriter) WriteFrame(frame int, img image.Image) (string, error) {
	if !w.Enabled(frame) {
		return "", nil
	}
	path := w.Path(frame)
	if err := SavePNG(path, img); err != nil {
		return "", err
	}
	logger.Debugf("wrote frame %d to %s", frame, path)
	return path, nil
}

// SavePNG encodes the image to path, creating parent directories
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("error saving PNG %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing PNG %s: %w", path, err)
	}
	return nil
}
