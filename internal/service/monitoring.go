package service

import (
	"context"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/repository"
)

type MonitoringService struct {
	stateRepo   repository.StateRepo
	readingRepo repository.ReadingRepo
}

func NewMonitoringService(stateRepo repository.StateRepo, readingRepo repository.ReadingRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, readingRepo: readingRepo}
}

// GetState returns the latest persisted thermostat state.
// If no state is persisted yet, returns the baseline OFF snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.ThermostatState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ThermostatState{}, err
	}
	if state.ID == 0 {
		return baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// ListReadings returns readings history, newest first.
func (s *MonitoringService) ListReadings(ctx context.Context, f ReadingFilter) ([]models.Reading, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.readingRepo.List(ctx, from, to, f.Limit)
}

// baselineState returns a sensible default snapshot for an uninitialized DB.
func baselineState() models.ThermostatState {
	return models.ThermostatState{
		ID:           1, // DB schema enforces single-row state with id=1
		Mode:         models.ModeOff,
		SetpointF:    DefaultSetpointF,
		CurrentTempF: DefaultAmbientF,
		Indicators:   models.Indicators{Red: models.IndicatorOff, Blue: models.IndicatorOff},
		ErrorCodes:   nil,
		LightOn:      false,
		UpdatedAt:    time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
