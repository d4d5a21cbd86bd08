// Package speech is the entry point of speechkit. A Service wires the
// decoder set, the conversion orchestrator and the configured backend, and
// exposes two asynchronous operations:
//
//	svc, err := speech.New(cfg)
//	if err != nil { ... }
//	if err := svc.Start(ctx); err != nil { ... }
//	res, err := svc.Transcribe(ctx, file, "audio/mpeg", "", speech.TranscriptionOptions{}).Await(ctx)
//
// Both operations return an async.Future and never fail synchronously.
// Failures carry an errors.AppError code: CONNECTION_INCOMPATIBLE,
// TRANSCRIPTION, GENERATION, AUDIO_FORMAT_NOT_SUPPORTED, MODEL_SETUP_FAILURE,
// TIMEOUT or INVALID_INPUT.
package speech
