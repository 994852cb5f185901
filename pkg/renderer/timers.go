package renderer

import (
	"sort"
	"time"
)

// DefaultWindowSize is the number of frames kept by a SlidingAverage
const DefaultWindowSize = 10

// Clock is the timing source used by the renderer and its timers
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the monotonic wall clock
var SystemClock Clock = systemClock{}

// SlidingAverage keeps the mean of the last Capacity values
type SlidingAverage struct {
	values []float64
	next   int
	count  int
	sum    float64
}

// NewSlidingAverage creates a window holding up to capacity values
func NewSlidingAverage(capacity int) *SlidingAverage {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &SlidingAverage{values: make([]float64, capacity)}
}

// Add appends a value, evicting the oldest one when full, and returns the new mean
func (sa *SlidingAverage) Add(value float64) float64 {
	if sa.count == len(sa.values) {
		sa.sum -= sa.values[sa.next]
	} else {
		sa.count++
	}
	sa.values[sa.next] = value
	sa.sum += value
	sa.next = (sa.next + 1) % len(sa.values)
	return sa.Mean()
}

// Mean returns the average of the window, or 0 when empty
func (sa *SlidingAverage) Mean() float64 {
	if sa.count == 0 {
		return 0
	}
	return sa.sum / float64(sa.count)
}

// Len returns the number of values currently in the window
func (sa *SlidingAverage) Len() int { return sa.count }

// Capacity returns the maximum number of values in the window
func (sa *SlidingAverage) Capacity() int { return len(sa.values) }

// Reset empties the window
func (sa *SlidingAverage) Reset() {
	sa.next = 0
	sa.count = 0
	sa.sum = 0
	for i := range sa.values {
		sa.values[i] = 0
	}
}

// Timer accumulates the time spent between Enter and Exit calls
type Timer struct {
	entered time.Time
	active  bool
	Total   time.Duration
	Calls   int
}

// PerCall returns the mean duration of one Enter/Exit pair
func (t *Timer) PerCall() time.Duration {
	if t.Calls == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Calls)
}

// FrameTimer is the name of the timer that drives the frame statistics
const FrameTimer = "frame"

// Timers is a set of named performance timers plus a frame timer with a
// sliding mean. Not safe for concurrent use.
type Timers struct {
	clock     Clock
	started   time.Time
	frames    Timer
	frameMean *SlidingAverage
	timers    map[string]*Timer
}

// NewTimers creates timers reading the given clock (SystemClock when nil)
func NewTimers(clock Clock) *Timers {
	if clock == nil {
		clock = SystemClock
	}
	return &Timers{
		clock:     clock,
		started:   clock.Now(),
		frameMean: NewSlidingAverage(DefaultWindowSize),
		timers:    make(map[string]*Timer),
	}
}

func (ts *Timers) timer(name string) *Timer {
	if name == FrameTimer {
		return &ts.frames
	}
	timer, ok := ts.timers[name]
	if !ok {
		timer = &Timer{}
		ts.timers[name] = timer
	}
	return timer
}

// Enter starts the named timer
func (ts *Timers) Enter(name string) {
	timer := ts.timer(name)
	timer.entered = ts.clock.Now()
	timer.active = true
}

// Exit stops the named timer and returns the time since Enter.
// Exiting a timer that was never entered is a no-op.
func (ts *Timers) Exit(name string) time.Duration {
	timer := ts.timer(name)
	if !timer.active {
		return 0
	}
	elapsed := ts.clock.Now().Sub(timer.entered)
	timer.Total += elapsed
	timer.Calls++
	timer.active = false

	if name == FrameTimer {
		ts.frameMean.Add(float64(elapsed) / float64(time.Millisecond))
	}
	return elapsed
}

// Transition exits one timer and enters the next
func (ts *Timers) Transition(from, to string) {
	ts.Exit(from)
	ts.Enter(to)
}

// Frames returns the number of completed frames
func (ts *Timers) Frames() int { return ts.frames.Calls }

// TimerRow is one named timer in a report
type TimerRow struct {
	Name    string
	Percent float64 // Share of the elapsed wall time
	Calls   int
	Total   time.Duration
	PerCall time.Duration
}

// TimerReport is a snapshot of the timers
type TimerReport struct {
	Frames     int
	Elapsed    time.Duration
	Hz         float64
	MsPerFrame float64 // Sliding mean over the last frames
	Rows       []TimerRow
}

// Report snapshots the timers; rows are sorted by name
func (ts *Timers) Report() TimerReport {
	elapsed := ts.clock.Now().Sub(ts.started)
	report := TimerReport{
		Frames:     ts.frames.Calls,
		Elapsed:    elapsed,
		MsPerFrame: ts.frameMean.Mean(),
	}
	if report.MsPerFrame > 0 {
		report.Hz = 1000.0 / report.MsPerFrame
	}

	for name, timer := range ts.timers {
		row := TimerRow{
			Name:    name,
			Calls:   timer.Calls,
			Total:   timer.Total,
			PerCall: timer.PerCall(),
		}
		if elapsed > 0 {
			row.Percent = 100.0 * float64(timer.Total) / float64(elapsed)
		}
		report.Rows = append(report.Rows, row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Name < report.Rows[j].Name
	})
	return report
}
