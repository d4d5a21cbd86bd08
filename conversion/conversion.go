package conversion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
)

// Mode selects what EnsureNormalized produces.
type Mode int

const (
	// ModePCM decodes and normalizes to mono 16 kHz PCM for local engines.
	ModePCM Mode = iota
	// ModePassthrough keeps the original bytes for upload to a remote API.
	ModePassthrough
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePCM:
		return "pcm"
	case ModePassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Source is the audio handed to one conversion. The orchestrator owns
// Content until EnsureNormalized returns.
type Source struct {
	// Content is the raw audio stream.
	Content io.Reader
	// MediaType is the declared media type or file extension.
	MediaType string
	// Format overrides detection when set.
	Format audio.Format
	// Length is the declared byte length, 0 if unknown.
	Length int64
}

// Audio is the result of a conversion. PCM is set in ModePCM, Raw,
// FileName and MediaType in ModePassthrough.
type Audio struct {
	Format    audio.Format
	PCM       *audio.Buffer
	Raw       []byte
	FileName  string
	MediaType string
}

// Duration returns the PCM length, or 0 for passthrough audio.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.PCM == nil {
		return 0
	}
	return a.PCM.Duration()
}

// Orchestrator turns a Source into Audio ready for a backend.
type Orchestrator struct {
	decoders *audio.DecoderSet
	tempDir  string
	log      *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTempDir sets the directory for intermediate files. Defaults to a
// "speechkit" directory under os.TempDir.
func WithTempDir(dir string) Option {
	return func(o *Orchestrator) { o.tempDir = dir }
}

// WithLogger sets the orchestrator logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator creates an orchestrator over the given decoder set.
func NewOrchestrator(decoders *audio.DecoderSet, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		decoders: decoders,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tempDir == "" {
		o.tempDir = filepath.Join(os.TempDir(), "speechkit")
	}
	return o
}

// TempDir returns the directory used for intermediate files.
func (o *Orchestrator) TempDir() string {
	return o.tempDir
}

// EnsureNormalized converts src for the given mode. Conversion runs once;
// a failed decode is terminal and no other decoder is tried. Every temp file
// created along the way is removed before it returns.
func (o *Orchestrator) EnsureNormalized(ctx context.Context, src Source, mode Mode) (*Audio, error) {
	if src.Content == nil {
		return nil, errors.Transcription("audio content is required")
	}

	format := src.Format
	if format == "" {
		format = audio.Detect(src.MediaType)
	}

	switch mode {
	case ModePassthrough:
		return o.passthrough(src, format)
	case ModePCM:
		return o.decode(ctx, src, format)
	default:
		return nil, errors.Transcription(fmt.Sprintf("unknown conversion mode %d", mode))
	}
}

func (o *Orchestrator) passthrough(src Source, format audio.Format) (*Audio, error) {
	data, err := readAll(src)
	if err != nil {
		return nil, errors.Transcription("unable to read audio content").WithCause(err)
	}

	o.log.Debug("audio passed through", logger.Fields(
		logger.FieldFormat, format.String(),
		logger.FieldBytes, len(data),
	))
	return &Audio{
		Format:    format,
		Raw:       data,
		FileName:  "speech." + format.Extension(),
		MediaType: format.MediaType(),
	}, nil
}

func (o *Orchestrator) decode(ctx context.Context, src Source, format audio.Format) (_ *Audio, err error) {
	// Resolve before touching the file system so an unsupported format
	// leaves nothing behind.
	decoder, err := o.decoders.For(format)
	if err != nil {
		return nil, err
	}

	path, err := o.writeTemp(src, format)
	if err != nil {
		return nil, err
	}
	defer o.remove(path)

	start := time.Now()
	decoded, err := decoder.Decode(ctx, path)
	if err != nil {
		return nil, errors.Transcription("unable to decode audio").
			WithCause(err).
			WithDetail(logger.FieldFormat, format.String())
	}

	normalized, err := audio.Normalize(decoded)
	if err != nil {
		return nil, errors.Transcription("unable to normalize audio").WithCause(err)
	}

	o.log.Debug("audio normalized", logger.Fields(
		logger.FieldFormat, format.String(),
		logger.FieldSampleRate, decoded.SampleRate,
		logger.FieldChannels, decoded.Channels,
		logger.FieldSamples, len(normalized.Samples),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return &Audio{Format: format, PCM: normalized}, nil
}

// writeTemp copies the source into speechkit-<uuid>.<ext>. A partial write
// is removed before the error is returned.
func (o *Orchestrator) writeTemp(src Source, format audio.Format) (string, error) {
	if err := os.MkdirAll(o.tempDir, 0o755); err != nil {
		return "", errors.Transcription("unable to create temp directory").WithCause(err)
	}

	path := filepath.Join(o.tempDir, "speechkit-"+uuid.NewString()+"."+format.Extension())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", errors.Transcription("unable to create temp file").WithCause(err)
	}

	n, copyErr := io.Copy(f, src.Content)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		o.remove(path)
		return "", errors.Transcription("unable to write audio content").WithCause(copyErr)
	}

	o.log.Debug("audio written to temp file", logger.Fields(logger.FieldPath, path, logger.FieldBytes, n))
	return path, nil
}

func (o *Orchestrator) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		o.log.Warn("temp file not removed", logger.MergeWithError(logger.Fields(logger.FieldPath, path), err))
	}
}

func readAll(src Source) ([]byte, error) {
	var buf bytes.Buffer
	if src.Length > 0 {
		buf.Grow(int(src.Length))
	}
	if _, err := buf.ReadFrom(src.Content); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
