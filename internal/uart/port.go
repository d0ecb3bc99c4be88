package uart

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// PortConfig describes the serial link: 115200 8N1 on a Pi's /dev/ttyS0 by default.
type PortConfig struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
}

const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
)

// Open opens the configured serial device as an io.ReadWriteCloser.
func Open(cfg PortConfig) (io.ReadWriteCloser, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device not configured")
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	timeout := cfg.ReadTimeout
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}

	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %q: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %q: %w", cfg.Device, err)
	}
	return port, nil
}
