package backend

import (
	"context"

	"github.com/kbukum/speechkit/conversion"
	"github.com/kbukum/speechkit/errors"
)

// Backend performs speech-to-text and text-to-speech. A backend that lacks
// a capability returns a ConnectionIncompatible error from that method.
type Backend interface {
	// Name returns the backend name used in logs and metrics.
	Name() string
	// Kind returns the backend variant.
	Kind() Kind
	// Input returns the conversion mode the backend expects its audio in.
	Input() conversion.Mode
	// IsAvailable reports whether the backend can serve requests.
	IsAvailable(ctx context.Context) bool
	// Transcribe converts speech to text.
	Transcribe(ctx context.Context, req *TranscriptionRequest) (*TranscriptionResult, error)
	// Generate converts text to speech.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

// Lifecycle is implemented by backends that hold resources between calls.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Unsupported returns the error for a capability kind does not implement.
func Unsupported(kind Kind, capability string) error {
	return errors.ConnectionIncompatible(kind.String(), capability)
}
