// Package local implements the speech backend on an in-process whisper
// engine.
//
// The backend owns a single engine Context for its lifetime. Start resolves
// the model through a ModelResolver (file path, bundled resource or URL
// download) and loads it; Stop closes it. Inference calls are serialized by
// a single-slot bulkhead because engine contexts are not safe for concurrent
// use. Speech generation is not supported and fails with
// CONNECTION_INCOMPATIBLE.
package local
