package local

import "context"

// Params are the inference settings for one Full call.
type Params struct {
	Threads       int
	Language      string
	Translate     bool
	PrintProgress bool
	InitialPrompt string
	Temperature   float64
}

// Engine loads whisper models.
type Engine interface {
	// Init loads the model at modelPath and returns its inference context.
	Init(ctx context.Context, modelPath string) (Context, error)
}

// Context is a loaded model. It is not safe for concurrent use; Backend
// serializes every Full and the segment reads that follow it.
type Context interface {
	// Full runs inference over mono 16 kHz samples in [-1, 1]. A non-zero
	// result code means inference failed.
	Full(ctx context.Context, params Params, samples []float32) (int, error)
	// NumSegments returns the number of segments from the last Full call.
	NumSegments() int
	// SegmentText returns the text of segment i from the last Full call.
	SegmentText(i int) string
	// Close releases the model.
	Close() error
}
