// Package uart carries the thermostat's serial protocol: a one-line telemetry
// frame going out and one-word commands coming in. Framing is plain text so a
// USB->TTL terminal on the other end stays usable.
package uart

import (
	"fmt"
	"strconv"
	"strings"
)

// TelemetryFrame is the periodic report: "<MODE>,<tempF>,<setpointF>".
type TelemetryFrame struct {
	Mode      string
	TempF     int
	SetpointF int
}

// Encode renders the frame without a trailing newline.
func (f TelemetryFrame) Encode() string {
	return fmt.Sprintf("%s,%d,%d", strings.ToUpper(f.Mode), f.TempF, f.SetpointF)
}

// ParseTelemetry decodes a frame produced by Encode. Used by the receiving
// side of the link and by tests.
func ParseTelemetry(line string) (TelemetryFrame, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return TelemetryFrame{}, fmt.Errorf("telemetry frame %q: want 3 fields, got %d", line, len(parts))
	}
	temp, err := strconv.Atoi(parts[1])
	if err != nil {
		return TelemetryFrame{}, fmt.Errorf("telemetry frame %q: bad temp: %w", line, err)
	}
	sp, err := strconv.Atoi(parts[2])
	if err != nil {
		return TelemetryFrame{}, fmt.Errorf("telemetry frame %q: bad setpoint: %w", line, err)
	}
	return TelemetryFrame{
		Mode:      strings.ToUpper(strings.TrimSpace(parts[0])),
		TempF:     temp,
		SetpointF: sp,
	}, nil
}

// Command is a single inbound instruction.
type Command int

const (
	CmdUnknown Command = iota
	CmdNone            // blank line / noise
	CmdLightOn
	CmdLightOff
	CmdCycle
	CmdSetpointUp
	CmdSetpointDown
	CmdExit
)

// ParseCommand normalizes and classifies one received line.
func ParseCommand(line string) Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return CmdNone
	case "on":
		return CmdLightOn
	case "off":
		return CmdLightOff
	case "cycle":
		return CmdCycle
	case "up":
		return CmdSetpointUp
	case "down":
		return CmdSetpointDown
	case "exit", "quit":
		return CmdExit
	default:
		return CmdUnknown
	}
}
