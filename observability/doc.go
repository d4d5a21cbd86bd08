// Package observability defines the OpenTelemetry metric instruments that
// speechkit records around backend operations.
//
// Instruments are created on the global meter provider; the host process
// decides whether and where to export them.
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//	metrics.RecordOperation(ctx, "remote", "transcribe", observability.StatusOK, elapsed)
package observability
