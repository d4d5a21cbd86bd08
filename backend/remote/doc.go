// Package remote implements the speech backend over an OpenAI-compatible
// HTTP API: multipart uploads to audio/transcriptions, JSON requests to
// audio/speech and a GET on models as the health check.
package remote
