package stream

import (
	"runtime"
	"sync"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
)

// buildJob is one queued page-build request. generation is captured at
// enqueue time so a stale result (its LOD rebuilt since) can be detected
// and discarded without synchronizing with the worker that produced it.
type buildJob struct {
	lod        int
	coord      page.Coord
	voxelSize  int64
	generation uint64
	edits      page.EditSnapshot
}

// buildResult is what a worker goroutine sends back after running
// page.BuildPage off the main thread.
type buildResult struct {
	lod        int
	generation uint64
	page       page.Built
}

// workerPool runs page.BuildPage on a fixed pool of goroutines, replacing
// original_source's one-shot rayon::spawn per job with a persistent pool -
// grounded on the goroutine/channel/WaitGroup idiom in
// deepteams-webp/internal/lossy/encode_parallel.go's encodeFrameParallel,
// adapted from a row-claim counter to a job channel since build jobs (unlike
// encoder rows) arrive continuously rather than in one fixed batch.
type workerPool struct {
	jobs    chan buildJob
	results chan buildResult
	wg      sync.WaitGroup
}

func newWorkerPool(numWorkers int, oracle terrain.Oracle) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
		if numWorkers > 6 {
			numWorkers = 6
		}
		if numWorkers < 1 {
			numWorkers = 1
		}
	}

	wp := &workerPool{
		jobs:    make(chan buildJob, 256),
		results: make(chan buildResult, 256),
	}

	for i := 0; i < numWorkers; i++ {
		wp.wg.Add(1)
		go func() {
			defer wp.wg.Done()
			for job := range wp.jobs {
				built := page.BuildPage(oracle, job.edits, job.coord, job.voxelSize)
				wp.results <- buildResult{lod: job.lod, generation: job.generation, page: built}
			}
		}()
	}

	return wp
}

// submit enqueues a job, blocking if the job channel is full - this is the
// pipeline's only backpressure point; MaxInflightPageJobs keeps it from
// ever actually blocking in practice.
func (wp *workerPool) submit(job buildJob) { wp.jobs <- job }

// stop closes the job channel and waits for every worker to drain, then
// closes the results channel so any remaining consumer range loop ends.
func (wp *workerPool) stop() {
	close(wp.jobs)
	wp.wg.Wait()
	close(wp.results)
}
