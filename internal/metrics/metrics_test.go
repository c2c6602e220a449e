package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFace(t *testing.T) {
	m := New()
	m.ObserveFace(PathOrdered, 9, 10*time.Millisecond)
	m.ObserveFace(PathFallback, 4, 10*time.Millisecond)
	m.ObserveFace(PathFallback, 12, 10*time.Millisecond)
	m.ObserveFace(PathPlaceholder, 0, 0)

	if got := testutil.ToFloat64(m.faces.WithLabelValues(PathFallback)); got != 2 {
		t.Errorf("fallback faces = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.faces.WithLabelValues(PathPlaceholder)); got != 1 {
		t.Errorf("placeholder faces = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.candidates); got != 1 {
		t.Errorf("candidate series = %d, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFace(PathOrdered, 9, time.Second)
	m.ObserveSolve("ok", 20, time.Second)
	m.CacheHit()
	m.CacheMiss()
	if err := m.WriteTextfile("/nonexistent/metrics.prom"); err != nil {
		t.Errorf("WriteTextfile on nil: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveSolve("ok", 19, 200*time.Millisecond)
	m.CacheMiss()

	path := filepath.Join(t.TempDir(), "gocube.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{
		`gocube_vision_solves_total{result="ok"} 1`,
		`gocube_vision_solution_cache_total{outcome="miss"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
