package renderer

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSlidingAverage(t *testing.T) {
	window := NewSlidingAverage(3)
	if window.Mean() != 0 {
		t.Errorf("Expected empty mean 0, got %f", window.Mean())
	}

	means := []float64{1, 1.5, 2, 3, 4}
	for i, value := range []float64{1, 2, 3, 4, 5} {
		if got := window.Add(value); math.Abs(got-means[i]) > 1e-12 {
			t.Errorf("After adding %f: expected mean %f, got %f", value, means[i], got)
		}
	}
	if window.Len() != 3 {
		t.Errorf("Expected 3 values, got %d", window.Len())
	}

	window.Reset()
	if window.Len() != 0 || window.Mean() != 0 {
		t.Errorf("Expected empty window after reset")
	}

	if NewSlidingAverage(0).Capacity() != DefaultWindowSize {
		t.Errorf("Expected default capacity %d", DefaultWindowSize)
	}
}

func TestTimers(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimers(clock)

	for i := 0; i < 4; i++ {
		timers.Enter(FrameTimer)
		timers.Enter("sample")
		clock.Advance(6 * time.Millisecond)
		timers.Transition("sample", "display")
		clock.Advance(4 * time.Millisecond)
		timers.Exit("display")
		if got := timers.Exit(FrameTimer); got != 10*time.Millisecond {
			t.Errorf("Frame %d: expected 10ms, got %v", i, got)
		}
	}

	if timers.Frames() != 4 {
		t.Errorf("Expected 4 frames, got %d", timers.Frames())
	}

	report := timers.Report()
	if report.Elapsed != 40*time.Millisecond {
		t.Errorf("Expected 40ms elapsed, got %v", report.Elapsed)
	}
	if math.Abs(report.MsPerFrame-10) > 1e-9 || math.Abs(report.Hz-100) > 1e-6 {
		t.Errorf("Expected 10ms/frame at 100Hz, got %f ms at %f Hz", report.MsPerFrame, report.Hz)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 timer rows, got %d", len(report.Rows))
	}

	expected := []struct {
		name    string
		percent float64
		perCall time.Duration
	}{
		{"display", 40, 4 * time.Millisecond},
		{"sample", 60, 6 * time.Millisecond},
	}
	for i, want := range expected {
		row := report.Rows[i]
		if row.Name != want.name {
			t.Errorf("Row %d: expected %s, got %s", i, want.name, row.Name)
		}
		if row.Calls != 4 {
			t.Errorf("%s: expected 4 calls, got %d", row.Name, row.Calls)
		}
		if math.Abs(row.Percent-want.percent) > 1e-9 {
			t.Errorf("%s: expected %.1f%%, got %f", row.Name, want.percent, row.Percent)
		}
		if row.PerCall != want.perCall {
			t.Errorf("%s: expected %v per call, got %v", row.Name, want.perCall, row.PerCall)
		}
	}
}

func TestTimerExitWithoutEnter(t *testing.T) {
	timers := NewTimers(newFakeClock())
	if got := timers.Exit("never"); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if timers.Exit(FrameTimer) != 0 || timers.Frames() != 0 {
		t.Errorf("Expected no frame to be counted")
	}
}
