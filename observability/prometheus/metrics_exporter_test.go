package prometheus

import (
	"strings"
	"testing"
	"time"

	"github.com/Swind/go-executor/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("executor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordPollDuration("exec-a", 250*time.Microsecond, false)
	exporter.RecordPollDuration("exec-a", 100*time.Microsecond, true)
	exporter.RecordTaskSpawned("exec-a")
	exporter.RecordTaskCompleted("exec-a")
	exporter.RecordTaskPanic("exec-a", "panic")
	exporter.RecordTaskAbandoned("exec-a")
	exporter.RecordWake("exec-a")
	exporter.RecordWake("exec-a")
	exporter.RecordQueueDepth("exec-a", 7)
	exporter.RecordTaskRejected("exec-a", core.RejectReasonQueueFull)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"spawned", testutil.ToFloat64(exporter.spawnedTotal.WithLabelValues("exec-a")), 1},
		{"completed", testutil.ToFloat64(exporter.completedTotal.WithLabelValues("exec-a")), 1},
		{"panic", testutil.ToFloat64(exporter.panicTotal.WithLabelValues("exec-a")), 1},
		{"abandoned", testutil.ToFloat64(exporter.abandonedTotal.WithLabelValues("exec-a")), 1},
		{"wake", testutil.ToFloat64(exporter.wakeTotal.WithLabelValues("exec-a")), 2},
		{"queue depth", testutil.ToFloat64(exporter.queueDepth.WithLabelValues("exec-a")), 7},
		{"rejected", testutil.ToFloat64(exporter.rejectedTotal.WithLabelValues("exec-a", "queue full")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	for _, result := range []string{"ready", "pending"} {
		histCount, err := histogramSampleCount(exporter.pollDurationSeconds.WithLabelValues("exec-a", result))
		if err != nil {
			t.Fatalf("histogramSampleCount failed: %v", err)
		}
		if histCount != 1 {
			t.Fatalf("%s poll sample count = %d, want 1", result, histCount)
		}
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("executor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("executor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskPanic("exec-a", nil)
	second.RecordTaskPanic("exec-a", nil)

	got := testutil.ToFloat64(first.panicTotal.WithLabelValues("exec-a"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilSafe(t *testing.T) {
	var exporter *MetricsExporter
	exporter.RecordWake("exec-a")
	exporter.RecordPollDuration("exec-a", time.Millisecond, true)
}

// TestMetricsExporter_WiredIntoExecutor drives a real executor through the exporter
func TestMetricsExporter_WiredIntoExecutor(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	cfg := core.DefaultExecutorConfig()
	cfg.Name = "wired"
	cfg.Metrics = exporter
	exec, spawner := core.NewScheduler(cfg)

	for range 3 {
		spawner.Spawn(core.Yield())
	}
	spawner.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		exec.Run()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not stop")
	}

	if got := testutil.ToFloat64(exporter.completedTotal.WithLabelValues("wired")); got != 3 {
		t.Errorf("completed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(exporter.wakeTotal.WithLabelValues("wired")); got != 3 {
		t.Errorf("wakes = %v, want 3", got)
	}

	expected := `
# HELP executor_task_spawned_total Total number of tasks spawned.
# TYPE executor_task_spawned_total counter
executor_task_spawned_total{executor="wired"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "executor_task_spawned_total"); err != nil {
		t.Errorf("GatherAndCompare: %v", err)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
