package errors

// ErrorCode represents a machine-readable error kind.
type ErrorCode string

// Backend capability errors
const (
	// ErrCodeConnectionIncompatible indicates the selected backend does not
	// implement the requested capability.
	ErrCodeConnectionIncompatible ErrorCode = "CONNECTION_INCOMPATIBLE"
	// ErrCodeModelSetupFailure indicates the model could not be resolved,
	// downloaded, extracted or loaded.
	ErrCodeModelSetupFailure ErrorCode = "MODEL_SETUP_FAILURE"
)

// Operation errors
const (
	// ErrCodeTranscription indicates a speech-to-text failure.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION"
	// ErrCodeGeneration indicates a text-to-speech failure.
	ErrCodeGeneration ErrorCode = "GENERATION"
	// ErrCodeAudioFormatNotSupported indicates no decoder is available for the format.
	ErrCodeAudioFormatNotSupported ErrorCode = "AUDIO_FORMAT_NOT_SUPPORTED"
)

// Transport and input errors
const (
	// ErrCodeTimeout indicates a network operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidInput indicates invalid options or configuration.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:                 true,
	ErrCodeConnectionIncompatible:  false,
	ErrCodeModelSetupFailure:       false,
	ErrCodeTranscription:           false,
	ErrCodeGeneration:              false,
	ErrCodeAudioFormatNotSupported: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
