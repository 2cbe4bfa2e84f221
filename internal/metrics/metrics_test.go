package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestObserveTaskRecordsObservation(t *testing.T) {
	start := time.Now()
	time.Sleep(2 * time.Millisecond)
	ObserveTask(start)

	mfs, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() != "chunkiq_task_duration_ms" {
			continue
		}
		found = true
		if len(mf.Metric) == 0 {
			t.Fatalf("task_duration_ms metric has no samples")
		}
		if got := mf.Metric[0].GetHistogram().GetSampleCount(); got == 0 {
			t.Fatalf("expected histogram sample count > 0, got %d", got)
		}
	}
	if !found {
		t.Fatalf("chunkiq_task_duration_ms not found")
	}
}

func TestAddChunksSplitsOutcomes(t *testing.T) {
	AddChunks(10, 3)

	mfs, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	var newCount, dupCount float64
	for _, mf := range mfs {
		if mf.GetName() != "chunkiq_chunk_total" {
			continue
		}
		for _, m := range mf.Metric {
			for _, lp := range m.GetLabel() {
				switch lp.GetValue() {
				case "new":
					newCount = m.GetCounter().GetValue()
				case "duplicate":
					dupCount = m.GetCounter().GetValue()
				}
			}
		}
	}

	if newCount < 7 {
		t.Errorf("expected at least 7 new chunks recorded, got %v", newCount)
	}
	if dupCount < 3 {
		t.Errorf("expected at least 3 duplicate chunks recorded, got %v", dupCount)
	}
}

func TestMetricsEndpointExposesCoreMetrics(t *testing.T) {
	ObserveTask(time.Now())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "chunkiq_task_duration_ms_bucket") {
		t.Fatalf("expected task_duration_ms histogram buckets, body: %s", body)
	}
	if !strings.Contains(body, "chunkiq_up") {
		t.Fatalf("expected up gauge, body: %s", body)
	}
}
