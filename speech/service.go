package speech

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/speechkit/async"
	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/backend/local"
	"github.com/kbukum/speechkit/backend/local/whispercpp"
	"github.com/kbukum/speechkit/backend/remote"
	"github.com/kbukum/speechkit/component"
	"github.com/kbukum/speechkit/conversion"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/observability"
)

// ComponentName is the name the service registers under.
const ComponentName = "speech"

// Service runs transcription and speech generation against the configured
// backend. It is a component.Component: Start prepares the backend (model
// acquisition for local connections) and Stop releases it.
type Service struct {
	cfg          Config
	log          *logger.Logger
	decoders     *audio.DecoderSet
	orchestrator *conversion.Orchestrator
	registry     *backend.Registry
	raw          backend.Backend
	backend      backend.Backend
}

type options struct {
	engine    local.Engine
	resources fs.FS
	meter     metric.Meter
	log       *logger.Logger
	caps      *audio.Capabilities
	decoders  []audio.DecoderOption
}

// Option configures a Service.
type Option func(*options)

// WithEngine sets the local inference engine. Defaults to whisper.cpp
// through connection.local.executable.
func WithEngine(e local.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithResources sets the file system resource:// and classpath:// model
// sources are read from.
func WithResources(fsys fs.FS) Option {
	return func(o *options) { o.resources = fsys }
}

// WithMeter sets the meter for operation metrics. Defaults to the global
// meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithCapabilities skips the ffmpeg probe and uses caps.
func WithCapabilities(caps audio.Capabilities) Option {
	return func(o *options) { o.caps = &caps }
}

// WithDecoderOptions passes extra options to the decoder set.
func WithDecoderOptions(opts ...audio.DecoderOption) Option {
	return func(o *options) { o.decoders = append(o.decoders, opts...) }
}

// New builds the service for cfg. Defaults are applied to a copy of cfg
// before it is validated.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get(ComponentName)
	}
	log := o.log

	caps := audio.ProbeCapabilities(cfg.Audio.CapabilityConfig)
	if o.caps != nil {
		caps = *o.caps
	}
	decoders := audio.NewDecoderSet(caps, append([]audio.DecoderOption{audio.WithDecoderLogger(log)}, o.decoders...)...)

	convOpts := []conversion.Option{conversion.WithLogger(log)}
	if cfg.Audio.TempDir != "" {
		convOpts = append(convOpts, conversion.WithTempDir(cfg.Audio.TempDir))
	}
	orchestrator := conversion.NewOrchestrator(decoders, convOpts...)

	metrics, err := observability.NewMetrics(o.meter)
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	registry := backend.NewRegistry()
	registry.RegisterFactory(backend.KindRemote, remote.Factory(cfg.Connection.Remote, log))
	registry.RegisterFactory(backend.KindLocal, func() (backend.Backend, error) {
		engine := o.engine
		if engine == nil {
			engine = whispercpp.New(cfg.Connection.Local.Executable, orchestrator.TempDir(), log)
		}
		resolver, err := local.NewModelResolver(local.WithResources(o.resources), local.WithResolverLogger(log))
		if err != nil {
			return nil, err
		}
		return local.New(cfg.Connection.Local, engine, resolver, log)
	})

	raw, err := registry.GetOrCreate(cfg.Connection.Kind)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:          cfg,
		log:          log,
		decoders:     decoders,
		orchestrator: orchestrator,
		registry:     registry,
		raw:          raw,
		backend:      backend.Chain(backend.WithMetrics(metrics), backend.WithLogging(log))(raw),
	}, nil
}

// Name returns ComponentName.
func (s *Service) Name() string { return ComponentName }

// Backend returns the configured backend with middleware applied.
func (s *Service) Backend() backend.Backend { return s.backend }

// Start prepares backends that need it, such as loading a local model.
func (s *Service) Start(ctx context.Context) error {
	if lc, ok := s.raw.(backend.Lifecycle); ok {
		return lc.Start(ctx)
	}
	return nil
}

// Stop releases backend resources.
func (s *Service) Stop(ctx context.Context) error {
	if lc, ok := s.raw.(backend.Lifecycle); ok {
		return lc.Stop(ctx)
	}
	return nil
}

// Health reports whether the backend is available.
func (s *Service) Health(ctx context.Context) component.Health {
	h := component.Health{Name: ComponentName, Status: component.StatusHealthy}
	if !s.raw.IsAvailable(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = s.raw.Name() + " backend unavailable"
	}
	return h
}

// Describe summarizes the backend and decodable formats.
func (s *Service) Describe() component.Description {
	return component.Description{
		Type:    "speech",
		Details: fmt.Sprintf("backend=%s formats=%s", s.raw.Kind(), strings.Join(s.decoders.Available(), "; ")),
	}
}

// Transcribe converts content for the backend and transcribes it. mediaType
// may be a MIME type or a file extension; prompt is optional. Errors are
// only reported through the returned future.
func (s *Service) Transcribe(ctx context.Context, content io.Reader, mediaType, prompt string, opts TranscriptionOptions) *async.Future[*backend.TranscriptionResult] {
	f := async.Go(ctx, func(ctx context.Context) (*backend.TranscriptionResult, error) {
		req, err := s.cfg.Transcription.request(prompt, opts)
		if err != nil {
			return nil, err
		}
		req.Audio, err = s.orchestrator.EnsureNormalized(ctx, conversion.Source{
			Content:   content,
			MediaType: mediaType,
		}, s.raw.Input())
		if err != nil {
			return nil, err
		}
		return s.backend.Transcribe(ctx, req)
	})
	return async.MapError(f, operationError(errors.ErrCodeTranscription))
}

// GenerateSpeech synthesizes text. Errors are only reported through the
// returned future.
func (s *Service) GenerateSpeech(ctx context.Context, text string, opts GenerationOptions) *async.Future[*backend.GenerationResult] {
	if strings.TrimSpace(text) == "" {
		return async.Failed[*backend.GenerationResult](errors.Validation("text is required"))
	}
	f := async.Go(ctx, func(ctx context.Context) (*backend.GenerationResult, error) {
		req, err := s.cfg.Generation.request(text, opts)
		if err != nil {
			return nil, err
		}
		return s.backend.Generate(ctx, req)
	})
	return async.MapError(f, operationError(errors.ErrCodeGeneration))
}

// operationError turns panics into errors of the operation's kind.
func operationError(code errors.ErrorCode) func(error) error {
	return func(err error) error {
		var panicErr *async.PanicError
		if stderrors.As(err, &panicErr) {
			return errors.New(code, "unexpected failure").WithCause(err)
		}
		return err
	}
}
