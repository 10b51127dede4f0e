package domain

import "time"

// Status is a point-in-time snapshot of server statistics.
// It is persisted to status.json and served on the status endpoint.
type Status struct {
	// State is the lifecycle state name (e.g. "Running").
	State string `json:"state"`

	// StartedAt is when the server began accepting connections.
	StartedAt time.Time `json:"started_at,omitempty"`

	// UpdatedAt is when this snapshot was taken.
	UpdatedAt time.Time `json:"updated_at"`

	// ActiveConnections is the number of currently open connections.
	ActiveConnections int64 `json:"active_connections"`

	// TotalConnections counts every accepted connection since start.
	TotalConnections uint64 `json:"total_connections"`

	// FramesReceived counts binary frames accepted from clients.
	FramesReceived uint64 `json:"frames_received"`

	// ControlsReceived counts recognized control messages.
	ControlsReceived uint64 `json:"controls_received"`

	// ControlsIgnored counts well-formed control messages of unknown type.
	ControlsIgnored uint64 `json:"controls_ignored"`

	// FramesDropped counts payloads superseded before a worker processed them.
	FramesDropped uint64 `json:"frames_dropped"`

	// FramesDeduped counts frames skipped because they matched the last frame.
	FramesDeduped uint64 `json:"frames_deduped"`

	// ProtocolErrors counts discarded malformed messages.
	ProtocolErrors uint64 `json:"protocol_errors"`

	// Inferences counts successful transform calls.
	Inferences uint64 `json:"inferences"`

	// TransformFailures counts transform calls that tore down a connection.
	TransformFailures uint64 `json:"transform_failures"`

	// InferenceTime is the cumulative time spent inside the transform.
	InferenceTime time.Duration `json:"inference_time_ns"`
}
