package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

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

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordOperation(ctx, "remote", "transcribe", StatusOK, time.Second)
	metrics.RecordError(ctx, "remote", "transcribe", "TIMEOUT")
	metrics.RecordAudio(ctx, "remote", "transcribe", time.Second)
}

func TestMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter(MeterName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "local", "transcribe", StatusOK, 250*time.Millisecond)
	metrics.RecordOperation(ctx, "local", "transcribe", StatusError, 10*time.Millisecond)
	metrics.RecordError(ctx, "local", "transcribe", "TRANSCRIPTION")
	metrics.RecordAudio(ctx, "local", "transcribe", 2*time.Second)
	metrics.RecordAudio(ctx, "local", "transcribe", 0)

	got := collect(t, reader)

	ops, ok := got["speech.operations"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("speech.operations missing or wrong type: %+v", got["speech.operations"])
	}
	if len(ops.DataPoints) != 2 {
		t.Errorf("expected 2 status series, got %d", len(ops.DataPoints))
	}
	for _, dp := range ops.DataPoints {
		if v, _ := dp.Attributes.Value(attribute.Key("backend")); v.AsString() != "local" {
			t.Errorf("unexpected backend attribute %v", v)
		}
		if dp.Value != 1 {
			t.Errorf("expected count 1, got %d", dp.Value)
		}
	}

	dur, ok := got["speech.operation.duration"].Data.(metricdata.Histogram[float64])
	if !ok || len(dur.DataPoints) != 1 || dur.DataPoints[0].Count != 2 {
		t.Errorf("unexpected duration histogram: %+v", got["speech.operation.duration"].Data)
	}

	errs, ok := got["speech.errors"].Data.(metricdata.Sum[int64])
	if !ok || len(errs.DataPoints) != 1 {
		t.Fatalf("unexpected errors sum: %+v", got["speech.errors"].Data)
	}
	if v, _ := errs.DataPoints[0].Attributes.Value(attribute.Key("code")); v.AsString() != "TRANSCRIPTION" {
		t.Errorf("unexpected code attribute %v", v)
	}

	audio, ok := got["speech.audio.seconds"].Data.(metricdata.Histogram[float64])
	if !ok || len(audio.DataPoints) != 1 {
		t.Fatalf("unexpected audio histogram: %+v", got["speech.audio.seconds"].Data)
	}
	if audio.DataPoints[0].Count != 1 || audio.DataPoints[0].Sum != 2 {
		t.Errorf("expected one 2s sample, got count=%d sum=%v", audio.DataPoints[0].Count, audio.DataPoints[0].Sum)
	}
}
