package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

// SampleFunc takes the samples of one work item using the worker's sampler
type SampleFunc func(item WorkItem, sampler core.Sampler)

// SampleTask is a chunk of work items for one worker
type SampleTask struct {
	TaskID int
	Items  []WorkItem
	Sample SampleFunc
}

// SampleResult contains the result of a finished chunk
type SampleResult struct {
	TaskID  int
	Samples int
}

// WorkerPool manages parallel sampling
type WorkerPool struct {
	taskQueue   chan SampleTask
	resultQueue chan SampleResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// Worker handles individual sampling tasks with its own sampler
type Worker struct {
	ID          int
	sampler     core.Sampler
	taskQueue   chan SampleTask
	resultQueue chan SampleResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Worker i samples with a generator seeded seed+i.
func NewWorkerPool(numWorkers int, seed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// A frame submits at most tasksPerWorker chunks per worker
	queueSize := numWorkers * tasksPerWorker

	wp := &WorkerPool{
		taskQueue:   make(chan SampleTask, queueSize),
		resultQueue: make(chan SampleResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			sampler:     core.NewSeededSampler(seed + int64(i)),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers; later calls do nothing
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for _, worker := range wp.workers {
			wp.wg.Add(1)
			go worker.run(&wp.wg)
		}
	})
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// SubmitTask submits a sampling task to the worker pool
func (wp *WorkerPool) SubmitTask(task SampleTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed task result
func (wp *WorkerPool) GetResult() (SampleResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// tasksPerWorker is the number of chunks a frame is split into per worker
const tasksPerWorker = 4

// Split divides the frame's work items into at most numWorkers*tasksPerWorker
// contiguous chunks
func (wp *WorkerPool) Split(items []WorkItem) [][]WorkItem {
	if len(items) == 0 {
		return nil
	}
	chunks := wp.numWorkers * tasksPerWorker
	size := (len(items) + chunks - 1) / chunks

	var out [][]WorkItem
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		samples := 0
		for _, item := range task.Items {
			task.Sample(item, w.sampler)
			samples += item.Samples
		}

		w.resultQueue <- SampleResult{
			TaskID:  task.TaskID,
			Samples: samples,
		}
	}
}
