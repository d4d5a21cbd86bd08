// Package resilience provides the concurrency and retry primitives speechkit
// relies on.
//
//   - Bulkhead limits concurrent calls. SerialConfig builds the single-slot
//     queueing bulkhead that serializes calls into the local engine.
//   - Retry re-runs an operation with exponential backoff. Only model
//     downloads use it; backends never retry on their own.
//
//	serial := resilience.NewBulkhead(resilience.SerialConfig("whisper"))
//	text, err := resilience.ExecuteWithResult(serial, ctx, func() (string, error) {
//	    return engine.Transcribe(samples)
//	})
package resilience
