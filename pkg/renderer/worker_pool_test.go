package renderer

import (
	"sync/atomic"
	"testing"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

func TestWorkerPoolSplit(t *testing.T) {
	pool := NewWorkerPool(2, 1)

	tests := []struct {
		name   string
		items  int
		chunks int
	}{
		{"empty", 0, 0},
		{"fewer items than chunks", 3, 3},
		{"exact", 8, 8},
		{"many items", 100, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]WorkItem, tt.items)
			chunks := pool.Split(items)
			if len(chunks) != tt.chunks {
				t.Errorf("Expected %d chunks, got %d", tt.chunks, len(chunks))
			}
			total := 0
			for _, chunk := range chunks {
				total += len(chunk)
			}
			if total != tt.items {
				t.Errorf("Expected %d items across chunks, got %d", tt.items, total)
			}
		})
	}
}

func TestWorkerPoolProcessesAllTasks(t *testing.T) {
	pool := NewWorkerPool(3, 7)
	pool.Start()
	defer pool.Stop()

	if pool.GetNumWorkers() != 3 {
		t.Fatalf("Expected 3 workers, got %d", pool.GetNumWorkers())
	}

	const pixels = 50
	var counts [pixels]int64
	sample := func(item WorkItem, sampler core.Sampler) {
		for i := 0; i < item.Samples; i++ {
			if v := sampler.Get1D(); v < 0 || v >= 1 {
				t.Errorf("sampler value out of range: %f", v)
			}
			atomic.AddInt64(&counts[item.Index], 1)
		}
	}

	items := make([]WorkItem, pixels)
	for i := range items {
		items[i] = WorkItem{Index: i, Samples: i%3 + 1}
	}

	chunks := pool.Split(items)
	for i, chunk := range chunks {
		pool.SubmitTask(SampleTask{TaskID: i, Items: chunk, Sample: sample})
	}

	seen := make(map[int]bool)
	samples := 0
	for range chunks {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("result queue closed early")
		}
		if seen[result.TaskID] {
			t.Errorf("task %d reported twice", result.TaskID)
		}
		seen[result.TaskID] = true
		samples += result.Samples
	}

	expected := 0
	for i := range items {
		expected += items[i].Samples
		if got := atomic.LoadInt64(&counts[i]); got != int64(items[i].Samples) {
			t.Errorf("pixel %d: expected %d samples, got %d", i, items[i].Samples, got)
		}
	}
	if samples != expected {
		t.Errorf("Expected %d samples reported, got %d", expected, samples)
	}
}

func TestWorkerPoolStopIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Start()
	pool.Start()
	pool.Stop()
	pool.Stop()

	if _, ok := pool.GetResult(); ok {
		t.Errorf("Expected closed result queue after stop")
	}
}
