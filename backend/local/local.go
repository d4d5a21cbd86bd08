package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/component"
	"github.com/kbukum/speechkit/conversion"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/resilience"
)

// Name is the backend name used in logs and metrics.
const Name = "local"

// Backend runs transcription on a whisper engine in this process. It owns
// one engine context from Start to Stop and runs one inference at a time.
type Backend struct {
	cfg      Config
	engine   Engine
	resolver *ModelResolver
	serial   *resilience.Bulkhead
	log      *logger.Logger

	// startMu serializes Start so the model is resolved once. mu guards the
	// loaded state only and is never held across a download.
	startMu   sync.Mutex
	mu        sync.RWMutex
	wctx      Context
	modelPath string
}

// New creates a local backend. Call Start before Transcribe.
func New(cfg Config, engine Engine, resolver *ModelResolver, log *logger.Logger) (*Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, errors.Validation("local backend requires an engine")
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent(Name)
	if resolver == nil {
		var err error
		if resolver, err = NewModelResolver(WithResolverLogger(log)); err != nil {
			return nil, err
		}
	}

	return &Backend{
		cfg:      cfg,
		engine:   engine,
		resolver: resolver,
		serial:   resilience.NewBulkhead(resilience.SerialConfig(Name)),
		log:      log,
	}, nil
}

// Factory returns a backend.Factory that creates local backends.
func Factory(cfg Config, engine Engine, resolver *ModelResolver, log *logger.Logger) backend.Factory {
	return func() (backend.Backend, error) {
		return New(cfg, engine, resolver, log)
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return Name }

// Kind returns backend.KindLocal.
func (b *Backend) Kind() backend.Kind { return backend.KindLocal }

// Input returns conversion.ModePCM.
func (b *Backend) Input() conversion.Mode { return conversion.ModePCM }

// IsAvailable reports whether the model is loaded.
func (b *Backend) IsAvailable(context.Context) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.wctx != nil
}

// Start resolves the model and loads it. Calling Start again is a no-op.
func (b *Backend) Start(ctx context.Context) error {
	b.startMu.Lock()
	defer b.startMu.Unlock()
	if b.IsAvailable(ctx) {
		return nil
	}

	source := b.cfg.Model.Source
	modelPath, err := b.resolver.Resolve(ctx, source, b.cfg.Model.InstallDir)
	if err != nil {
		return err
	}
	wctx, err := b.engine.Init(ctx, modelPath)
	if err != nil {
		return errors.ModelSetupFailure(source, err)
	}
	if wctx == nil {
		return errors.ModelSetupFailure(source, fmt.Errorf("engine returned no context for %s", modelPath))
	}

	b.mu.Lock()
	b.wctx = wctx
	b.modelPath = modelPath
	b.mu.Unlock()
	b.log.Info("model loaded", logger.Fields(logger.FieldModel, modelPath, "threads", b.cfg.Threads))
	return nil
}

// Stop closes the engine context and removes extracted model files.
func (b *Backend) Stop(context.Context) error {
	b.mu.Lock()
	wctx := b.wctx
	b.wctx = nil
	b.mu.Unlock()

	var closeErr error
	if wctx != nil {
		// Wait for an in-flight inference before closing.
		closeErr = b.serial.Execute(context.Background(), wctx.Close)
	}
	cleanupErr := b.resolver.Cleanup()
	if closeErr != nil {
		return closeErr
	}
	return cleanupErr
}

// Health reports whether the model is loaded.
func (b *Backend) Health(ctx context.Context) component.Health {
	h := component.Health{Name: Name, Status: component.StatusHealthy}
	if !b.IsAvailable(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = "model not loaded"
	}
	return h
}

// Describe reports the loaded model.
func (b *Backend) Describe() component.Description {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return component.Description{
		Type:    "backend",
		Details: fmt.Sprintf("local model=%s threads=%d", b.modelPath, b.cfg.Threads),
	}
}

// Transcribe runs inference on the normalized PCM and joins the segment
// texts with single spaces.
func (b *Backend) Transcribe(ctx context.Context, req *backend.TranscriptionRequest) (*backend.TranscriptionResult, error) {
	if req.Audio == nil || req.Audio.PCM == nil {
		return nil, errors.Transcription("local transcription needs normalized PCM audio")
	}
	if !req.Audio.PCM.IsNormalized() {
		return nil, errors.Transcription(fmt.Sprintf("local transcription needs mono 16 kHz audio, got %d channels at %d Hz",
			req.Audio.PCM.Channels, req.Audio.PCM.SampleRate))
	}

	params := b.params(req)
	samples := req.Audio.PCM.Float32()

	text, err := resilience.ExecuteWithResult(b.serial, ctx, func() (string, error) {
		b.mu.RLock()
		wctx := b.wctx
		b.mu.RUnlock()
		if wctx == nil {
			return "", errors.Transcription("local model is not loaded")
		}

		code, err := wctx.Full(ctx, params, samples)
		if err != nil {
			return "", errors.Transcription("inference failed").WithCause(err)
		}
		if code != 0 {
			return "", errors.Transcription(fmt.Sprintf("inference failed with result code %d", code)).
				WithDetail("result_code", code)
		}

		n := wctx.NumSegments()
		segments := make([]string, 0, n)
		for i := range n {
			segments = append(segments, strings.TrimSpace(wctx.SegmentText(i)))
		}
		return strings.Join(segments, " "), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTranscription, "transcription was not run")
	}

	return &backend.TranscriptionResult{Text: text}, nil
}

// params merges connection defaults with the request options.
func (b *Backend) params(req *backend.TranscriptionRequest) Params {
	p := Params{
		Threads:       b.cfg.Threads,
		Translate:     b.cfg.Translate,
		PrintProgress: b.cfg.PrintProgress,
		InitialPrompt: req.Prompt,
		Temperature:   req.Temperature,
	}
	if req.LanguageSet() {
		p.Language = req.Language
	}
	return p
}

// Generate always fails: whisper models only transcribe.
func (b *Backend) Generate(context.Context, *backend.GenerationRequest) (*backend.GenerationResult, error) {
	return nil, backend.Unsupported(backend.KindLocal, backend.CapabilityGeneration)
}
