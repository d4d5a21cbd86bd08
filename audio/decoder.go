package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/process"
)

// Decoder turns an audio file into PCM at the file's native rate and layout,
// or at the target layout when the decoder resamples as part of decoding.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Buffer, error)
}

// DecodeError reports a failure inside a decoder.
type DecodeError struct {
	Format  Format
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Message, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(format Format, message string, err error) *DecodeError {
	return &DecodeError{Format: format, Message: message, Err: err}
}

// DecoderSet resolves the decoder for a format given the process capabilities.
type DecoderSet struct {
	caps     Capabilities
	decoders map[Format]Decoder
	log      *logger.Logger
}

// DecoderOption configures a DecoderSet.
type DecoderOption func(*DecoderSet)

// WithDecoder registers or replaces the decoder for a format. Extended
// formats still require the extended capability.
func WithDecoder(format Format, d Decoder) DecoderOption {
	return func(s *DecoderSet) { s.decoders[format] = d }
}

// WithDecoderLogger sets the logger used by the set and its subprocess decoders.
func WithDecoderLogger(log *logger.Logger) DecoderOption {
	return func(s *DecoderSet) { s.log = log }
}

// NewDecoderSet builds the core decoders and, when caps allow, the extended ones.
func NewDecoderSet(caps Capabilities, opts ...DecoderOption) *DecoderSet {
	s := &DecoderSet{
		caps:     caps,
		decoders: make(map[Format]Decoder),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults := map[Format]Decoder{
		FormatWAV: &WAVDecoder{},
		FormatMP3: &MP3Decoder{},
	}
	if caps.Extended {
		ffmpeg := NewFFmpegDecoder(process.NewRunner(process.Config{Binary: caps.FFmpegPath}, s.log))
		defaults[FormatFLAC] = &FLACDecoder{}
		defaults[FormatM4A] = ffmpeg
		defaults[FormatAAC] = ffmpeg
		defaults[FormatOGG] = ffmpeg
		defaults[FormatWEBM] = ffmpeg
	}
	for format, d := range defaults {
		if _, overridden := s.decoders[format]; !overridden {
			s.decoders[format] = d
		}
	}

	s.log.Debug("decoder set ready", logger.Fields("extended", caps.Extended, "available", s.describe()))
	return s
}

// Capabilities returns the capabilities the set was built with.
func (s *DecoderSet) Capabilities() Capabilities {
	return s.caps
}

// For returns the decoder for format, or an AUDIO_FORMAT_NOT_SUPPORTED error
// naming the format and listing what is available.
func (s *DecoderSet) For(format Format) (Decoder, error) {
	if s.Supports(format) {
		return s.decoders[format], nil
	}
	return nil, errors.AudioFormatNotSupported(format.String(), s.Available())
}

// Supports reports whether format can be decoded in this process.
func (s *DecoderSet) Supports(format Format) bool {
	if !format.Known() {
		return false
	}
	if !format.Core() && !s.caps.Extended {
		return false
	}
	_, ok := s.decoders[format]
	return ok
}

// Formats returns the decodable formats in display order.
func (s *DecoderSet) Formats() []Format {
	var out []Format
	for _, f := range KnownFormats() {
		if s.Supports(f) {
			out = append(out, f)
		}
	}
	return out
}

// Available lists the decodable formats grouped by tier, core first, e.g.
// ["MP3, WAV (core)", "AAC, FLAC, M4A, OGG, WEBM (extended)"].
func (s *DecoderSet) Available() []string {
	var core, extended []string
	for _, f := range s.Formats() {
		name := strings.ToUpper(f.String())
		if f.Core() {
			core = append(core, name)
		} else {
			extended = append(extended, name)
		}
	}
	var groups []string
	if len(core) > 0 {
		groups = append(groups, strings.Join(core, ", ")+" (core)")
	}
	if len(extended) > 0 {
		groups = append(groups, strings.Join(extended, ", ")+" (extended)")
	}
	return groups
}

func (s *DecoderSet) describe() string {
	return strings.Join(s.Available(), ", ")
}
