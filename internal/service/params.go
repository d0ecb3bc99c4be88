package service

import "time"

// SetpointParams carries a setpoint update: either an absolute value or a delta.
type SetpointParams struct {
	SetpointF int // absolute °F target; used when Delta == 0
	Delta     int // relative change in °F (+1/-1 from the physical buttons)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "MODE_CHANGE", "SETPOINT_CHANGE", "TELEMETRY", "LIGHT", "ERROR"
}

// ReadingFilter bounds a readings history query.
type ReadingFilter struct {
	From  time.Time
	To    time.Time
	Limit int // 0 means repository default
}
