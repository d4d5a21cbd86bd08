package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every speechkit instrument.
const MeterName = "github.com/kbukum/speechkit"

// Status values recorded on the operation instruments.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Meter returns the speechkit meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(MeterName)
}

// Metrics holds the instruments recorded around backend operations.
type Metrics struct {
	operations   metric.Int64Counter
	duration     metric.Float64Histogram
	errors       metric.Int64Counter
	audioSeconds metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter. A nil meter
// uses the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = Meter()
	}

	operations, err := meter.Int64Counter("speech.operations",
		metric.WithDescription("Speech operations by backend, operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speech.operations counter: %w", err)
	}

	duration, err := meter.Float64Histogram("speech.operation.duration",
		metric.WithDescription("Duration of speech operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speech.operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("speech.errors",
		metric.WithDescription("Failed speech operations by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speech.errors counter: %w", err)
	}

	audioSeconds, err := meter.Float64Histogram("speech.audio.seconds",
		metric.WithDescription("Length of audio transcribed or generated"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speech.audio.seconds histogram: %w", err)
	}

	return &Metrics{
		operations:   operations,
		duration:     duration,
		errors:       errorTotal,
		audioSeconds: audioSeconds,
	}, nil
}

// RecordOperation records one finished operation.
func (m *Metrics) RecordOperation(ctx context.Context, backend, operation, status string, d time.Duration) {
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
}

// RecordError records a failure by its error code.
func (m *Metrics) RecordError(ctx context.Context, backend, operation, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("code", code),
	))
}

// RecordAudio records the length of the audio an operation handled.
func (m *Metrics) RecordAudio(ctx context.Context, backend, operation string, d time.Duration) {
	if d <= 0 {
		return
	}
	m.audioSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
}
