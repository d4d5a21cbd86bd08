package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports whether the status is StatusHealthy.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Component is a lifecycle-managed part of the process, such as the speech
// service or a local inference engine.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start prepares the component. It may block on model acquisition.
	Start(ctx context.Context) error

	// Stop releases resources. It must be safe to call after a failed Start.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is the one-line summary logged when a component starts.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "speech", "backend".
	Type string
	// Details describes the configuration, e.g. "local model=ggml-base.en.bin".
	Details string
}

// Describable is optionally implemented by Components to report how they
// are configured.
type Describable interface {
	Describe() Description
}
