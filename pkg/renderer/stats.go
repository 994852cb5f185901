package renderer

import (
	"image"
	"time"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

// RenderStats contains statistics about the accumulated image
type RenderStats struct {
	TotalPixels    int     // Total number of pixels in the image
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MinSamples     int     // Minimum samples taken by any pixel
	MaxSamplesUsed int     // Maximum samples taken by any pixel
}

// FrameResult describes one rendered frame
type FrameResult struct {
	Frame    int           // 1-based frame number since the last reset
	Budget   int           // Pixel-samples scheduled for this frame
	Pixels   int           // Distinct pixels touched
	Duration time.Duration // Measured wall time
	Sweeps   int           // Completed refills of the pending set
	Samples  int           // Samples accumulated since the last reset
}

// PixelWorkItem accumulates the samples of one pixel
type PixelWorkItem struct {
	X, Y        int
	ColorAccum  core.Vec3 // RGB sum of all samples
	SampleCount int       // Number of samples in ColorAccum
	Pending     bool      // Scheduled in the frame being rendered
}

// AddSample adds a new color sample to the pixel
func (p *PixelWorkItem) AddSample(color core.Vec3) {
	p.ColorAccum = p.ColorAccum.Add(color)
	p.SampleCount++
}

// GetColor returns the current average color for this pixel
func (p *PixelWorkItem) GetColor() core.Vec3 {
	if p.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return p.ColorAccum.Multiply(1.0 / float64(p.SampleCount))
}

// Reset clears the accumulated samples, keeping the coordinates
func (p *PixelWorkItem) Reset() {
	p.ColorAccum = core.Vec3{}
	p.SampleCount = 0
	p.Pending = false
}

func calculateStats(pixels []PixelWorkItem) RenderStats {
	stats := RenderStats{TotalPixels: len(pixels)}
	if len(pixels) == 0 {
		return stats
	}

	stats.MinSamples = pixels[0].SampleCount
	for i := range pixels {
		count := pixels[i].SampleCount
		stats.TotalSamples += count
		stats.MinSamples = min(stats.MinSamples, count)
		stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, count)
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an 8-bit image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			offset := img.PixOffset(x, y)
			pixel := core.NewVec3(float64(img.Pix[offset]), float64(img.Pix[offset+1]), float64(img.Pix[offset+2]))
			total += pixel.Multiply(1.0 / 255.0).Luminance()
		}
	}
	return total / float64(pixels)
}
