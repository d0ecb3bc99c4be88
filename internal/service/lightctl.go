package service

import (
	"bufio"
	"context"
	"io"

	"thermolab/internal/logger"
	"thermolab/internal/uart"
)

// LightControlService consumes line commands from the serial link: light
// on/off, the three button equivalents, and exit. Unknown input is ignored.
type LightControlService struct {
	port   io.Reader
	thermo Thermostat
	log    *logger.Logger
}

func NewLightControlService(port io.Reader, thermo Thermostat, log *logger.Logger) *LightControlService {
	return &LightControlService{port: port, thermo: thermo, log: log}
}

// Run reads commands until ctx is canceled, the link closes, or an exit
// command arrives. The light is forced off on exit.
func (s *LightControlService) Run(ctx context.Context) {
	// done lets the reader goroutine bail out of a pending send once the
	// listener has returned, otherwise a late line would park it forever.
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.port)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.log.Warnw("serial_read_failed", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if s.handle(ctx, line) {
				return
			}
		}
	}
}

// handle executes one command; returns true when the listener should stop.
func (s *LightControlService) handle(ctx context.Context, line string) bool {
	switch uart.ParseCommand(line) {
	case uart.CmdLightOn:
		s.apply(ctx, "light_on", func() error { return s.thermo.SetLight(ctx, true) })
	case uart.CmdLightOff:
		s.apply(ctx, "light_off", func() error { return s.thermo.SetLight(ctx, false) })
	case uart.CmdCycle:
		s.apply(ctx, "cycle", func() error { return s.thermo.Cycle(ctx) })
	case uart.CmdSetpointUp:
		s.apply(ctx, "setpoint_up", func() error { return s.thermo.SetSetpoint(ctx, SetpointParams{Delta: 1}) })
	case uart.CmdSetpointDown:
		s.apply(ctx, "setpoint_down", func() error { return s.thermo.SetSetpoint(ctx, SetpointParams{Delta: -1}) })
	case uart.CmdExit:
		s.apply(ctx, "exit", func() error { return s.thermo.SetLight(ctx, false) })
		s.log.Infow("serial_listener_exiting")
		return true
	case uart.CmdNone, uart.CmdUnknown:
		// noise and unsupported commands are dropped, matching the wire contract
	}
	return false
}

func (s *LightControlService) apply(ctx context.Context, name string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Errorw("serial_command_failed", "command", name, "err", err)
	}
}
