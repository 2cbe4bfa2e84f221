// Package trace drives the parallel chunk-and-hash pipeline that
// measures deduplication potential across files and chunker
// configurations.
package trace

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inverted-tree/chunkIQ/internal/metrics"
	"github.com/inverted-tree/chunkIQ/internal/progress"
	"github.com/inverted-tree/chunkIQ/pkg/chunker"
	"github.com/inverted-tree/chunkIQ/pkg/dedup"
	"github.com/inverted-tree/chunkIQ/pkg/hasher"
	"github.com/inverted-tree/chunkIQ/pkg/mmap"
)

// idleSleep is how long a worker naps when the queue is drained but the
// producer has not finished enqueuing.
const idleSleep = 100 * time.Millisecond

var debugEnabled atomic.Bool

// SetDebug toggles verbose per-task worker logging.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

func logDebug(format string, args ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

// Task pairs one file mapping with one chunker configuration. Every
// task owns its mapping; the worker that finishes the task unmaps it.
type Task struct {
	Path    string
	Mapping *mmap.Mapping
	Config  chunker.Config
	Hash    hasher.Type
}

// Options parameterizes a trace run.
type Options struct {
	// Chunkers is traced per file; the first entry's target size is the
	// reference for the bytes-saved estimate.
	Chunkers []chunker.Type

	// Hash selects the digest applied to every chunk.
	Hash hasher.Type

	// Salt, when non-empty, is prefixed to each chunk before hashing.
	Salt []byte

	// Jobs is the worker count; values below one mean a single worker.
	Jobs int

	// Progress renders an inline gauge on stderr while the queue
	// drains.
	Progress bool
}

// Result aggregates a completed run.
type Result struct {
	Chunks     uint64
	Duplicates uint64
	BytesSaved uint64
}

// SavedKiB reports the bytes-saved estimate in whole KiB.
func (r Result) SavedKiB() uint64 {
	return r.BytesSaved >> 10
}

// Run traces files under every requested chunker configuration and
// reports the dedup totals. Files are mapped once per configuration,
// so each task's lifetime is independent. Run blocks until all workers
// have exited.
func Run(files []string, opts Options) (Result, error) {
	if len(opts.Chunkers) == 0 {
		return Result{}, fmt.Errorf("no chunker types selected")
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	numTasks := len(files) * len(opts.Chunkers)
	queue := make(chan Task, numTasks)

	var (
		isDone       atomic.Bool
		globalChunks atomic.Uint64
		globalDups   atomic.Uint64
		wg           sync.WaitGroup
	)
	set := dedup.NewSet()

	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go worker(i, queue, &isDone, set, &globalChunks, &globalDups, &wg)
	}

	err := produce(queue, files, opts, &isDone)

	var gaugeDone chan struct{}
	if err == nil && opts.Progress && numTasks > 0 {
		gauge := progress.New(os.Stderr, numTasks, func() int { return len(queue) }, isDone.Load)
		gaugeDone = make(chan struct{})
		go func() {
			defer close(gaugeDone)
			gauge.Run(context.Background())
		}()
	}

	wg.Wait()
	if gaugeDone != nil {
		<-gaugeDone
	}

	if err != nil {
		return Result{}, err
	}

	total := globalChunks.Load()
	dups := globalDups.Load()
	saved := dups * uint64(opts.Chunkers[0].Size())

	metrics.SetDedupRatio(dups, total)
	metrics.AddBytesSaved(saved)

	res := Result{Chunks: total, Duplicates: dups, BytesSaved: saved}
	log.Printf("[Trace] Found %d duplicate chunks out of %d total chunks, saving %d KiB",
		res.Duplicates, res.Chunks, res.SavedKiB())

	return res, nil
}

// produce maps every (file, chunker) pair and enqueues the resulting
// tasks. isDone is released on every exit path so workers never spin
// after a failed producer.
func produce(queue chan<- Task, files []string, opts Options, isDone *atomic.Bool) error {
	defer isDone.Store(true)

	// Map everything up front: an unmappable input aborts the run
	// before any task is enqueued.
	tasks, err := buildTasks(files, opts)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		select {
		case queue <- task:
		default:
			// Cannot happen with capacity == len(tasks).
			log.Printf("[Error] Failed to add task to queue - queue is full!")
			task.Mapping.Close()
		}
	}

	return nil
}

func buildTasks(files []string, opts Options) ([]Task, error) {
	tasks := make([]Task, 0, len(files)*len(opts.Chunkers))

	for _, file := range files {
		for _, ct := range opts.Chunkers {
			m, err := mmap.Open(file)
			if err != nil {
				for _, t := range tasks {
					t.Mapping.Close()
				}
				return nil, err
			}
			tasks = append(tasks, Task{
				Path:    file,
				Mapping: m,
				Config:  chunker.Config{Type: ct, Salt: opts.Salt},
				Hash:    opts.Hash,
			})
		}
	}

	return tasks, nil
}

// worker drains tasks until the queue is empty and the producer has
// finished. Chunk and duplicate counts accumulate locally and flush to
// the globals exactly once at exit.
func worker(idx int, queue <-chan Task, isDone *atomic.Bool, set *dedup.Set,
	globalChunks, globalDups *atomic.Uint64, wg *sync.WaitGroup) {
	defer wg.Done()

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	log.Printf("[Worker %d] Started.", idx)

	var localChunks, localDups uint64

	flush := func() {
		globalChunks.Add(localChunks)
		globalDups.Add(localDups)
		metrics.AddChunks(localChunks, localDups)
		log.Printf("[Worker %d] Completed.", idx)
	}

	for {
		select {
		case task := <-queue:
			processTask(idx, task, set, &localChunks, &localDups)

		default:
			if !isDone.Load() {
				logDebug("[Worker %d] No task in queue. Sleeping.", idx)
				time.Sleep(idleSleep)
				continue
			}

			// The producer is finished; anything still queued was
			// enqueued before isDone flipped, so one final drain sees
			// every task.
			for {
				select {
				case task := <-queue:
					processTask(idx, task, set, &localChunks, &localDups)
				default:
					flush()
					return
				}
			}
		}
	}
}

// processTask chunks and hashes one mapping, feeding digests into the
// shared set. The first insert of a digest is the original; later
// inserts count as duplicates.
func processTask(idx int, task Task, set *dedup.Set, localChunks, localDups *uint64) {
	logDebug("[Worker %d] Chunking %s with %s using %s salted with %s.",
		idx, task.Path, task.Config.Type, task.Hash, saltDesc(task.Config.Salt))

	start := time.Now()
	defer metrics.ObserveTask(start)
	defer task.Mapping.Close()

	c := chunker.New(task.Config.Type)
	h := hasher.New(task.Hash, task.Config.Salt)

	it := c.Chunk(task.Mapping.Bytes())
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}

		if !set.Insert(h.Hash(chunk)) {
			*localDups++
		}
		*localChunks++
	}
}

func saltDesc(salt []byte) string {
	if len(salt) == 0 {
		return "no salt"
	}
	return fmt.Sprintf("%d salt bytes", len(salt))
}
