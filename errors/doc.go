// Package errors defines the speechkit error taxonomy.
//
// Every failure surfaced by a public operation is an *AppError carrying one
// of a small set of codes: CONNECTION_INCOMPATIBLE, TRANSCRIPTION,
// GENERATION, AUDIO_FORMAT_NOT_SUPPORTED, MODEL_SETUP_FAILURE and TIMEOUT.
// Only TIMEOUT is retryable.
//
// # Usage
//
//	if errors.IsCode(err, errors.ErrCodeAudioFormatNotSupported) {
//	    // ask the caller for another file
//	}
package errors
