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

// Component is a lifecycle-managed part of the service: the HTTP server,
// the guide store, the stream hub, the telemetry exporters.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It is only called on started components.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is the startup summary line of a component.
type Description struct {
	// Name defaults to the component's Name() when empty.
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable is optionally implemented by components that report
// themselves in the startup summary.
type Describable interface {
	Describe() Description
}

// Route holds a single HTTP route for the startup summary.
type Route struct {
	Method string
	Path   string
}

// RouteProvider is optionally implemented by the server component.
type RouteProvider interface {
	Routes() []Route
}
