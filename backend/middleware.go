package backend

import (
	"context"
	"time"

	"github.com/kbukum/speechkit/conversion"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/observability"
)

// Operation names recorded by the middlewares.
const (
	OpTranscribe = "transcribe"
	OpGenerate   = "generate"
)

// Middleware wraps a Backend with cross-cutting behavior.
type Middleware func(Backend) Backend

// Chain composes middlewares. The first one is outermost:
// Chain(a, b)(backend) is a(b(backend)).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Backend) Backend {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// passthrough forwards the descriptive methods to the wrapped backend.
type passthrough struct {
	inner Backend
}

func (p passthrough) Name() string                         { return p.inner.Name() }
func (p passthrough) Kind() Kind                           { return p.inner.Kind() }
func (p passthrough) Input() conversion.Mode               { return p.inner.Input() }
func (p passthrough) IsAvailable(ctx context.Context) bool { return p.inner.IsAvailable(ctx) }

// WithLogging logs every call with its duration. Failures are logged at
// error level with the error code.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Backend) Backend {
		return &loggingBackend{passthrough{inner}, log}
	}
}

type loggingBackend struct {
	passthrough
	log *logger.Logger
}

func (l *loggingBackend) Transcribe(ctx context.Context, req *TranscriptionRequest) (*TranscriptionResult, error) {
	start := time.Now()
	res, err := l.inner.Transcribe(ctx, req)
	l.record(ctx, OpTranscribe, req.Model, start, err)
	return res, err
}

func (l *loggingBackend) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	start := time.Now()
	res, err := l.inner.Generate(ctx, req)
	l.record(ctx, OpGenerate, req.Model, start, err)
	return res, err
}

func (l *loggingBackend) record(ctx context.Context, op, model string, start time.Time, err error) {
	fields := logger.DurationFields(op, time.Since(start))
	fields[logger.FieldBackend] = l.inner.Name()
	fields[logger.FieldModel] = model

	log := l.log.WithContext(ctx)
	if err != nil {
		fields["code"] = string(errors.CodeOf(err))
		log.Error("backend call failed", logger.MergeWithError(fields, err))
		return
	}
	log.Debug("backend call ok", fields)
}

// WithMetrics records operation counts, durations, errors and audio length.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner Backend) Backend {
		return &metricsBackend{passthrough{inner}, metrics}
	}
}

type metricsBackend struct {
	passthrough
	metrics *observability.Metrics
}

func (m *metricsBackend) Transcribe(ctx context.Context, req *TranscriptionRequest) (*TranscriptionResult, error) {
	start := time.Now()
	res, err := m.inner.Transcribe(ctx, req)
	m.record(ctx, OpTranscribe, start, err)
	if err == nil {
		d := req.Audio.Duration()
		if d == 0 {
			d = res.AudioDuration()
		}
		m.metrics.RecordAudio(ctx, m.inner.Name(), OpTranscribe, d)
	}
	return res, err
}

func (m *metricsBackend) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	start := time.Now()
	res, err := m.inner.Generate(ctx, req)
	m.record(ctx, OpGenerate, start, err)
	return res, err
}

func (m *metricsBackend) record(ctx context.Context, op string, start time.Time, err error) {
	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		m.metrics.RecordError(ctx, m.inner.Name(), op, code)
	}
	m.metrics.RecordOperation(ctx, m.inner.Name(), op, status, time.Since(start))
}
