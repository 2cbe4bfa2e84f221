// Package metrics exposes Prometheus instrumentation for trace runs.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chunkiq"

var (
	// Registry is a dedicated Prometheus registry for all chunkIQ metrics.
	Registry = prometheus.NewRegistry()

	// ChunkTotal counts processed chunks by dedup outcome.
	ChunkTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_total",
			Help:      "Total chunks processed during a trace run",
		},
		[]string{"outcome"}, // new | duplicate
	)

	// TasksProcessed counts finished chunking tasks.
	TasksProcessed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Number of (file, chunker) tasks completed",
		},
	)

	// TaskDuration tracks per-task chunk-and-hash latency.
	TaskDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_ms",
			Help:      "Duration of a single chunk-and-hash task in milliseconds",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	// DedupRatio reports the duplicate share of the chunks of the most
	// recently completed trace run.
	DedupRatio = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_ratio",
			Help:      "Duplicate chunks divided by total chunks",
		},
	)

	// BytesSavedTotal accumulates the estimated bytes saved by dedup.
	BytesSavedTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_saved_total",
			Help:      "Estimated bytes saved by deduplication",
		},
	)

	// WorkersActive gauges the number of live trace workers.
	WorkersActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_active",
			Help:      "Number of running trace workers",
		},
	)

	// AgentInfo exposes static information about the running binary.
	AgentInfo = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agent_info",
			Help:      "Static information about the agent",
		},
		[]string{"os", "arch", "version"},
	)

	// Up is a liveness gauge.
	Up = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "1 if the tracer is running",
		},
	)
)

func init() {
	Registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	Registry.MustRegister(prometheus.NewGoCollector())
	Up.Set(1)
}

// SetAgentInfo publishes a single info metric for the running binary.
func SetAgentInfo(version string) {
	if version == "" {
		version = "dev"
	}
	AgentInfo.WithLabelValues(runtime.GOOS, runtime.GOARCH, version).Set(1)
}

// AddChunks records a batch of chunk outcomes, typically a worker's
// local counters flushed at exit. The dedup ratio is published
// separately by SetDedupRatio.
func AddChunks(total, duplicates uint64) {
	if total == 0 {
		return
	}
	ChunkTotal.WithLabelValues("new").Add(float64(total - duplicates))
	ChunkTotal.WithLabelValues("duplicate").Add(float64(duplicates))
}

// SetDedupRatio publishes the final duplicate share for the run.
func SetDedupRatio(duplicates, total uint64) {
	if total == 0 {
		return
	}
	DedupRatio.Set(float64(duplicates) / float64(total))
}

// AddBytesSaved accumulates the run's bytes-saved estimate.
func AddBytesSaved(n uint64) {
	if n == 0 {
		return
	}
	BytesSavedTotal.Add(float64(n))
}

// ObserveTask records one completed chunking task.
func ObserveTask(start time.Time) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	TaskDuration.Observe(elapsed)
	TasksProcessed.Inc()
}

// Serve starts the /metrics HTTP endpoint on the provided address.
func Serve(ctx context.Context, addr string, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	srv := &http.Server{Addr: addr, Handler: mux}

	idleClosed := make(chan struct{})
	go func() {
		defer close(idleClosed)
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Printf("[Metrics] Prometheus endpoint listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-idleClosed
		return nil
	}

	return err
}
