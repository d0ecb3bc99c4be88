package models

import "time"

// Event types.
const (
	EventModeChange     = "MODE_CHANGE"
	EventSetpointChange = "SETPOINT_CHANGE"
	EventTelemetry      = "TELEMETRY"
	EventLight          = "LIGHT"
	EventError          = "ERROR"
)

// ThermostatEvent is a single log entry.
type ThermostatEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGE | SETPOINT_CHANGE | TELEMETRY | LIGHT | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
