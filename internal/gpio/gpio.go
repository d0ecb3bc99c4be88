// Package gpio abstracts the digital outputs the thermostat drives: the two
// indicator LEDs and the light pin controlled over the serial link. Only an
// in-memory driver ships here; a board-specific driver slots behind Pin.
package gpio

import "sync"

// Pin is a single digital output line.
type Pin interface {
	Set(high bool)
	Get() bool
}

// MemoryPin is a thread-safe in-memory pin, active-high aware.
type MemoryPin struct {
	mu         sync.Mutex
	number     int
	activeHigh bool
	level      bool // logical level, after active-high mapping
}

// NewMemoryPin returns a pin identified by its BCM-style number.
func NewMemoryPin(number int, activeHigh bool) *MemoryPin {
	return &MemoryPin{number: number, activeHigh: activeHigh}
}

func (p *MemoryPin) Number() int { return p.number }

func (p *MemoryPin) Set(high bool) {
	p.mu.Lock()
	p.level = high == p.activeHigh
	p.mu.Unlock()
}

func (p *MemoryPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}
