package renderer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidScheduler is returned for an unusable scheduler configuration
var ErrInvalidScheduler = errors.New("renderer: invalid scheduler config")

// budgetCeiling bounds an unlimited budget so the growth step cannot overflow
const budgetCeiling = 1 << 30

// SchedulerConfig controls how many pixel-samples are taken per frame
type SchedulerConfig struct {
	TargetFrameTime time.Duration // Desired wall time per frame
	InitialBudget   int           // Budget before any frame has been measured
	MinBudget       int           // Lower clamp on the budget
	MaxBudget       int           // Upper clamp on the budget, 0 = unlimited
	WindowSize      int           // Frames in the sliding mean
	Damping         float64       // Factor applied to target/measured
	MaxGrowth       float64       // Largest per-frame budget multiplier, 0 = uncapped
}

// DefaultSchedulerConfig returns a 60 Hz configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TargetFrameTime: time.Second / 60,
		InitialBudget:   1024,
		MinBudget:       1,
		MaxBudget:       0,
		WindowSize:      DefaultWindowSize,
		Damping:         0.99,
		MaxGrowth:       0,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	switch {
	case c.TargetFrameTime <= 0:
		return fmt.Errorf("%w: target frame time must be positive, got %v", ErrInvalidScheduler, c.TargetFrameTime)
	case c.MinBudget < 0:
		return fmt.Errorf("%w: min budget must not be negative, got %d", ErrInvalidScheduler, c.MinBudget)
	case c.MaxBudget < 0:
		return fmt.Errorf("%w: max budget must not be negative, got %d", ErrInvalidScheduler, c.MaxBudget)
	case c.MaxBudget > 0 && c.MaxBudget < c.MinBudget:
		return fmt.Errorf("%w: max budget %d below min budget %d", ErrInvalidScheduler, c.MaxBudget, c.MinBudget)
	case c.WindowSize < 0:
		return fmt.Errorf("%w: window size must not be negative, got %d", ErrInvalidScheduler, c.WindowSize)
	case c.Damping < 0 || c.Damping > 1:
		return fmt.Errorf("%w: damping must be in [0, 1], got %g", ErrInvalidScheduler, c.Damping)
	case c.MaxGrowth < 0:
		return fmt.Errorf("%w: max growth must not be negative, got %g", ErrInvalidScheduler, c.MaxGrowth)
	}
	return nil
}

// WorkItem asks for Samples new samples of the pixel at Index (row-major).
// A pixel appears at most once per frame.
type WorkItem struct {
	Index   int
	Samples int
}

// AdaptiveScheduler picks the pixel-samples of each frame so that frame time
// tracks the target. Pixels are drawn from a shuffled pending set which is
// refilled with every pixel once it runs dry, so after k complete sweeps every
// pixel has received at least k samples.
type AdaptiveScheduler struct {
	config     SchedulerConfig
	pixelCount int
	random     *rand.Rand
	window     *SlidingAverage // Frame durations in seconds
	budget     int
	pending    []int
	slots      []int // Position of a pixel in the frame being built, -1 if absent
	sweeps     int
}

// NewAdaptiveScheduler creates a scheduler over pixelCount pixels. A nil
// random uses a fixed seed.
func NewAdaptiveScheduler(pixelCount int, config SchedulerConfig, random *rand.Rand) (*AdaptiveScheduler, error) {
	if pixelCount <= 0 {
		return nil, fmt.Errorf("%w: pixel count must be positive, got %d", ErrInvalidScheduler, pixelCount)
	}
	if config.WindowSize == 0 {
		config.WindowSize = DefaultWindowSize
	}
	if config.Damping == 0 {
		config.Damping = 0.99
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if random == nil {
		random = rand.New(rand.NewSource(1))
	}

	slots := make([]int, pixelCount)
	for i := range slots {
		slots[i] = -1
	}

	s := &AdaptiveScheduler{
		config:     config,
		pixelCount: pixelCount,
		random:     random,
		window:     NewSlidingAverage(config.WindowSize),
		pending:    make([]int, 0, pixelCount),
		slots:      slots,
	}
	s.budget = s.clamp(config.InitialBudget)
	return s, nil
}

func (s *AdaptiveScheduler) clamp(budget int) int {
	if s.config.MaxBudget > 0 && budget > s.config.MaxBudget {
		budget = s.config.MaxBudget
	}
	if budget > budgetCeiling {
		budget = budgetCeiling
	}
	if budget < s.config.MinBudget {
		budget = s.config.MinBudget
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

// nextBudget applies budget = floor(prev * damping * target / measured)
// with prev taken as at least 1
func (s *AdaptiveScheduler) nextBudget() int {
	target := s.config.TargetFrameTime.Seconds()
	measured := target
	if s.window.Len() > 0 {
		measured = s.window.Mean()
	}

	var ratio float64
	if measured > 0 {
		ratio = s.config.Damping * target / measured
	} else {
		ratio = s.config.MaxGrowth
		if ratio == 0 {
			ratio = 1
		}
	}
	if s.config.MaxGrowth > 0 && ratio > s.config.MaxGrowth {
		ratio = s.config.MaxGrowth
	}

	// Grow from at least one sample so a zero budget can recover
	next := math.Floor(float64(max(s.budget, 1)) * ratio)
	if next > budgetCeiling {
		next = budgetCeiling
	}
	return s.clamp(int(next))
}

func (s *AdaptiveScheduler) refill() {
	s.pending = s.pending[:0]
	for i := 0; i < s.pixelCount; i++ {
		s.pending = append(s.pending, i)
	}
	s.random.Shuffle(len(s.pending), func(i, j int) {
		s.pending[i], s.pending[j] = s.pending[j], s.pending[i]
	})
	s.sweeps++
}

// Next computes the budget for the coming frame and returns the work for it.
// The sum of the returned sample counts equals Budget().
func (s *AdaptiveScheduler) Next() []WorkItem {
	s.budget = s.nextBudget()

	items := make([]WorkItem, 0, min(s.budget, s.pixelCount))
	for i := 0; i < s.budget; i++ {
		if len(s.pending) == 0 {
			s.refill()
		}
		last := len(s.pending) - 1
		index := s.pending[last]
		s.pending = s.pending[:last]

		if slot := s.slots[index]; slot >= 0 {
			items[slot].Samples++
			continue
		}
		s.slots[index] = len(items)
		items = append(items, WorkItem{Index: index, Samples: 1})
	}

	for _, item := range items {
		s.slots[item.Index] = -1
	}
	return items
}

// Record adds a measured frame duration to the sliding window
func (s *AdaptiveScheduler) Record(duration time.Duration) {
	s.window.Add(duration.Seconds())
}

// Budget returns the pixel-sample budget of the latest frame
func (s *AdaptiveScheduler) Budget() int { return s.budget }

// Sweeps returns how many times the pending set has been refilled
func (s *AdaptiveScheduler) Sweeps() int { return s.sweeps }

// PendingCount returns the pixels left in the current sweep
func (s *AdaptiveScheduler) PendingCount() int { return len(s.pending) }

// MeanFrameTime returns the sliding mean of the recorded frame durations
func (s *AdaptiveScheduler) MeanFrameTime() time.Duration {
	return time.Duration(math.Round(s.window.Mean() * float64(time.Second)))
}

// Reset drops the current sweep. The budget and timing window are kept.
func (s *AdaptiveScheduler) Reset() {
	s.pending = s.pending[:0]
	s.sweeps = 0
}
