// Package backend defines the speech backend contract, the registry that
// selects a backend by Kind, and middlewares for logging and metrics.
//
// Two variants exist: backend/remote calls an OpenAI-compatible HTTP API and
// accepts the caller's audio as is; backend/local runs a whisper engine on
// normalized PCM and supports transcription only.
package backend
