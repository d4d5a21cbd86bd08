package backend

import (
	"time"

	"github.com/kbukum/speechkit/conversion"
)

// Kind identifies a backend variant.
type Kind string

const (
	// KindRemote calls an OpenAI-compatible HTTP API.
	KindRemote Kind = "remote"
	// KindLocal runs a whisper engine in-process.
	KindLocal Kind = "local"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindRemote || k == KindLocal
}

// Capability names used in ConnectionIncompatible errors.
const (
	CapabilityTranscription = "speech-to-text"
	CapabilityGeneration    = "text-to-speech"
)

// LanguageAuto leaves language detection to the model.
const LanguageAuto = "auto"

// TranscriptionRequest is one speech-to-text call.
type TranscriptionRequest struct {
	// Audio is the converted input; PCM for local, raw bytes for remote.
	Audio *conversion.Audio
	// Prompt biases the transcription. Optional.
	Prompt string
	// Model is the model name, e.g. "whisper-1".
	Model string
	// Language is an ISO-639-1 hint. "auto" or empty means unset.
	Language string
	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
	// Verbose asks for language and duration attributes.
	Verbose bool
}

// LanguageSet reports whether the request carries a language hint.
func (r *TranscriptionRequest) LanguageSet() bool {
	return r.Language != "" && r.Language != LanguageAuto
}

// TranscriptionAttributes are returned for verbose transcriptions.
type TranscriptionAttributes struct {
	// Language is the detected language.
	Language string `json:"language,omitempty"`
	// Duration is the audio length in seconds.
	Duration float64 `json:"duration,omitempty"`
}

// TranscriptionResult is the outcome of a speech-to-text call.
type TranscriptionResult struct {
	Text string `json:"text"`
	// Attributes is set only when verbose output was requested and returned.
	Attributes *TranscriptionAttributes `json:"attributes,omitempty"`
}

// AudioDuration returns the duration reported in the attributes, if any.
func (r *TranscriptionResult) AudioDuration() time.Duration {
	if r == nil || r.Attributes == nil {
		return 0
	}
	return time.Duration(r.Attributes.Duration * float64(time.Second))
}

// Response formats accepted for speech generation.
const (
	FormatMP3  = "mp3"
	FormatOpus = "opus"
	FormatOGG  = "ogg"
	FormatAAC  = "aac"
	FormatFLAC = "flac"
	FormatPCM  = "pcm"
	FormatWAV  = "wav"
)

// GenerationRequest is one text-to-speech call.
type GenerationRequest struct {
	Text           string
	Model          string
	Voice          string
	ResponseFormat string
	Speed          float64
}

// GenerationResult is synthesized audio tagged with its media type.
type GenerationResult struct {
	Audio     []byte
	MediaType string
}

// GenerationMediaType maps a response format to the media type of the
// returned audio. Unknown formats yield application/octet-stream and false.
func GenerationMediaType(format string) (string, bool) {
	switch format {
	case FormatMP3, FormatOGG, FormatAAC, FormatFLAC, FormatPCM, FormatWAV, FormatOpus:
		return "audio/" + format, true
	default:
		return "application/octet-stream", false
	}
}
