package observability

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMetrics(t *testing.T) (*VoiceMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewVoiceMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestVoiceMetrics_RecordEnroll(t *testing.T) {
	metrics, reader := newManualMetrics(t)
	ctx := context.Background()

	metrics.RecordEnroll(ctx, "enrolled", "en")
	metrics.RecordEnroll(ctx, "rejected", "hi")

	got := collect(t, reader)
	if _, ok := got["voicegate.enroll.total"]; !ok {
		t.Error("expected enroll.total to be recorded")
	}
	sum, ok := got["voicegate.enrolled.speakers"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected enrolled.speakers sum data")
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 1 {
		t.Errorf("expected 1 enrolled speaker, got %d", total)
	}
}

func TestVoiceMetrics_RecordLogin(t *testing.T) {
	metrics, reader := newManualMetrics(t)
	ctx := context.Background()

	metrics.RecordLogin(ctx, "accepted", 0.21)
	metrics.RecordLogin(ctx, "rejected", 0.83)
	metrics.RecordLogin(ctx, "no_enrolled_users", -1) // no distance to record

	got := collect(t, reader)
	hist, ok := got["voicegate.login.distance"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("expected login.distance histogram data")
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("expected 2 distance samples, got %d", count)
	}
}

func TestVoiceMetrics_RecordExtract(t *testing.T) {
	metrics, reader := newManualMetrics(t)

	metrics.RecordExtract(context.Background(), "ok", 120*time.Millisecond)

	got := collect(t, reader)
	if _, ok := got["voicegate.extract.duration"]; !ok {
		t.Error("expected extract.duration to be recorded")
	}
}
