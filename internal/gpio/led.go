package gpio

import "sync"

// LEDMode is the requested output of an indicator LED.
type LEDMode int

const (
	LEDOff LEDMode = iota
	LEDSolid
	LEDPulse
)

func (m LEDMode) String() string {
	switch m {
	case LEDSolid:
		return "solid"
	case LEDPulse:
		return "pulse"
	default:
		return "off"
	}
}

// LED drives a pin in one of three modes. Pulse is recorded as a mode rather
// than bit-banged; a PWM-capable driver would render it.
type LED struct {
	mu   sync.Mutex
	pin  Pin
	mode LEDMode
}

func NewLED(pin Pin) *LED {
	return &LED{pin: pin}
}

func (l *LED) Off() {
	l.set(LEDOff, false)
}

func (l *LED) Solid() {
	l.set(LEDSolid, true)
}

func (l *LED) Pulse() {
	l.set(LEDPulse, true)
}

func (l *LED) Mode() LEDMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

func (l *LED) set(mode LEDMode, high bool) {
	l.mu.Lock()
	l.mode = mode
	l.pin.Set(high)
	l.mu.Unlock()
}
