package types

import "time"

// HealthState is the coarse service-level health classification. A graph
// outage degrades the service rather than failing it, because requests fall
// back to the in-memory store; unhealthy is reserved for failures with no
// fallback.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is the service health report exposed over the API.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Healthy builds a healthy status stamped with the current time.
func Healthy(message string) HealthStatus {
	return HealthStatus{
		State:     HealthStateHealthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Degraded builds a degraded status stamped with the current time.
func Degraded(message string) HealthStatus {
	return HealthStatus{
		State:     HealthStateDegraded,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// IsHealthy reports whether the state is healthy.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}
