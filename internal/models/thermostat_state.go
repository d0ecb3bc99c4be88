package models

import "time"

// Thermostat modes.
const (
	ModeOff  = "OFF"
	ModeHeat = "HEAT"
	ModeCool = "COOL"
)

// Indicator output levels for a single LED.
const (
	IndicatorOff   = "off"
	IndicatorSolid = "solid"
	IndicatorPulse = "pulse"
)

// Indicators describes the desired output of the two status LEDs.
type Indicators struct {
	Red  string `json:"red"`  // off | solid | pulse
	Blue string `json:"blue"` // off | solid | pulse
}

// ThermostatState is the current snapshot of the thermostat.
type ThermostatState struct {
	ID           int        `json:"id"`
	Mode         string     `json:"mode"`       // OFF | HEAT | COOL
	SetpointF    int        `json:"setpoint_f"` // °F, clamped to [40, 90]
	CurrentTempF float64    `json:"current_temp_f"`
	Indicators   Indicators `json:"indicators"`
	ErrorCodes   []string   `json:"error_codes,omitempty"` // e.g. ["SENSOR_FAULT"]
	LightOn      bool       `json:"light_on"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
