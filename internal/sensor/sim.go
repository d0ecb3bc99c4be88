package sensor

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Drive is the thermal influence the controller currently exerts on the
// simulated room (the equivalent of the heater/AC being on).
type Drive int

const (
	DriveIdle Drive = iota
	DriveHeat
	DriveCool
)

// Driveable is implemented by sources whose environment reacts to the
// controller's output. The poller feeds the active drive back each tick.
type Driveable interface {
	SetDrive(d Drive)
}

// Thermal rates in °C per second.
const (
	heatRatePerSec  = 0.05
	coolRatePerSec  = 0.08
	driftRatePerSec = 0.01 // passive drift toward ambient
	noiseAmplitudeC = 0.05
)

// Sim is an in-memory AHT-style temperature source. Temperature moves toward
// ambient when idle and ramps when driven, with a little measurement noise.
type Sim struct {
	mu       sync.Mutex
	id       string
	ambientC float64
	currentC float64
	drive    Drive
	lastRead time.Time
	rnd      *rand.Rand
}

// NewSim returns a simulated source starting at the given ambient temperature.
func NewSim(id string, ambientC float64) *Sim {
	return &Sim{
		id:       id,
		ambientC: ambientC,
		currentC: ambientC,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Sim) ID() string { return s.id }

// SetDrive updates the thermal influence applied on subsequent reads.
func (s *Sim) SetDrive(d Drive) {
	s.mu.Lock()
	s.drive = d
	s.mu.Unlock()
}

// Read advances the simulation by the wall time elapsed since the previous
// read and returns the new temperature with noise applied.
func (s *Sim) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.lastRead.IsZero() {
		s.lastRead = now
	}
	elapsed := now.Sub(s.lastRead).Seconds()
	s.lastRead = now

	switch s.drive {
	case DriveHeat:
		s.currentC += heatRatePerSec * elapsed
	case DriveCool:
		s.currentC -= coolRatePerSec * elapsed
	default:
		// drift toward ambient
		if s.currentC > s.ambientC {
			s.currentC = maxFloat(s.currentC-driftRatePerSec*elapsed, s.ambientC)
		} else if s.currentC < s.ambientC {
			s.currentC = minFloat(s.currentC+driftRatePerSec*elapsed, s.ambientC)
		}
	}

	noise := (s.rnd.Float64()*2 - 1) * noiseAmplitudeC
	return s.currentC + noise, nil
}

func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
