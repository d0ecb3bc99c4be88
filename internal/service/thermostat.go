package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"thermolab/internal/gpio"
	"thermolab/internal/models"
	"thermolab/internal/repository"

	"github.com/google/uuid"
)

// Setpoint bounds and defaults, in °F.
const (
	MinSetpointF     = 40
	MaxSetpointF     = 90
	DefaultSetpointF = 72
	DefaultAmbientF  = 72.0
)

var (
	errInvalidMode   = errors.New("invalid mode: must be OFF, HEAT, or COOL")
	errSetpointRange = fmt.Errorf("setpoint out of range: must be within [%d, %d] °F", MinSetpointF, MaxSetpointF)
)

// ThermostatService owns the mode state machine and the indicator outputs.
type ThermostatService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	red       *gpio.LED
	blue      *gpio.LED
	lightPin  gpio.Pin
}

func NewThermostatService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, red, blue *gpio.LED, lightPin gpio.Pin) *ThermostatService {
	return &ThermostatService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		red:       red,
		blue:      blue,
		lightPin:  lightPin,
	}
}

// nextMode advances OFF -> HEAT -> COOL -> OFF.
func nextMode(mode string) string {
	switch mode {
	case models.ModeOff:
		return models.ModeHeat
	case models.ModeHeat:
		return models.ModeCool
	default:
		return models.ModeOff
	}
}

// ComputeIndicators applies the indicator rules:
//   - OFF: both off
//   - HEAT: red pulses while below setpoint, solid once reached
//   - COOL: blue pulses while above setpoint, solid once reached
func ComputeIndicators(mode string, tempF float64, setpointF int) models.Indicators {
	ind := models.Indicators{Red: models.IndicatorOff, Blue: models.IndicatorOff}
	temp := int(math.Floor(tempF))

	switch mode {
	case models.ModeHeat:
		if temp < setpointF {
			ind.Red = models.IndicatorPulse
		} else {
			ind.Red = models.IndicatorSolid
		}
	case models.ModeCool:
		if temp > setpointF {
			ind.Blue = models.IndicatorPulse
		} else {
			ind.Blue = models.IndicatorSolid
		}
	}
	return ind
}

// Cycle advances the mode state machine one step (the green button).
func (s *ThermostatService) Cycle(ctx context.Context) error {
	st, err := s.loadOrBaseline(ctx)
	if err != nil {
		return err
	}
	return s.applyMode(ctx, st, nextMode(st.Mode), "Mode cycled to ")
}

// SetMode sets the mode directly after validation.
func (s *ThermostatService) SetMode(ctx context.Context, mode string) error {
	switch mode {
	case models.ModeOff, models.ModeHeat, models.ModeCool:
	default:
		return errInvalidMode
	}

	st, err := s.loadOrBaseline(ctx)
	if err != nil {
		return err
	}
	return s.applyMode(ctx, st, mode, "Mode changed to ")
}

// SetSetpoint applies either a relative or absolute setpoint change.
// Deltas clamp at the bounds (holding the button at the limit is a no-op);
// absolute values outside the bounds are rejected.
func (s *ThermostatService) SetSetpoint(ctx context.Context, p SetpointParams) error {
	st, err := s.loadOrBaseline(ctx)
	if err != nil {
		return err
	}

	prev := st.SetpointF
	next := prev
	if p.Delta != 0 {
		next = clampSetpoint(prev + p.Delta)
	} else {
		if p.SetpointF < MinSetpointF || p.SetpointF > MaxSetpointF {
			return errSetpointRange
		}
		next = p.SetpointF
	}

	if next == prev {
		return nil
	}

	now := time.Now().UTC()
	st.SetpointF = next
	st.Indicators = ComputeIndicators(st.Mode, st.CurrentTempF, st.SetpointF)
	st.UpdatedAt = now
	s.driveIndicators(st.Indicators)

	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	return s.eventRepo.Append(ctx, models.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventSetpointChange,
		Description: fmt.Sprintf("Setpoint changed to %d°F", next),
		Metadata: map[string]any{
			"from_f": prev,
			"to_f":   next,
		},
	})
}

// SetLight drives the serially controlled light pin.
func (s *ThermostatService) SetLight(ctx context.Context, on bool) error {
	st, err := s.loadOrBaseline(ctx)
	if err != nil {
		return err
	}
	if st.LightOn == on {
		return nil
	}

	now := time.Now().UTC()
	s.lightPin.Set(on)
	st.LightOn = on
	st.UpdatedAt = now

	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	desc := "Light turned off"
	if on {
		desc = "Light turned on"
	}
	return s.eventRepo.Append(ctx, models.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventLight,
		Description: desc,
		Metadata:    map[string]any{"on": on},
	})
}

// applyMode commits a mode transition: indicators, persistence, event.
func (s *ThermostatService) applyMode(ctx context.Context, st models.ThermostatState, mode, descPrefix string) error {
	if st.Mode == mode {
		return nil
	}

	now := time.Now().UTC()
	from := st.Mode
	st.Mode = mode
	st.Indicators = ComputeIndicators(st.Mode, st.CurrentTempF, st.SetpointF)
	st.UpdatedAt = now
	s.driveIndicators(st.Indicators)

	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	return s.eventRepo.Append(ctx, models.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventModeChange,
		Description: descPrefix + mode,
		Metadata: map[string]any{
			"from": from,
			"to":   mode,
		},
	})
}

// driveIndicators pushes the computed indicator modes onto the LEDs.
func (s *ThermostatService) driveIndicators(ind models.Indicators) {
	applyLED(s.red, ind.Red)
	applyLED(s.blue, ind.Blue)
}

func applyLED(led *gpio.LED, mode string) {
	if led == nil {
		return
	}
	switch mode {
	case models.IndicatorSolid:
		led.Solid()
	case models.IndicatorPulse:
		led.Pulse()
	default:
		led.Off()
	}
}

// loadOrBaseline fetches the state row, substituting the baseline snapshot
// when the row does not exist yet.
func (s *ThermostatService) loadOrBaseline(ctx context.Context) (models.ThermostatState, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ThermostatState{}, err
	}
	if st.ID == 0 {
		st = baselineState()
	}
	return st, nil
}

func clampSetpoint(v int) int {
	if v < MinSetpointF {
		return MinSetpointF
	}
	if v > MaxSetpointF {
		return MaxSetpointF
	}
	return v
}
