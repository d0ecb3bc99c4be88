package service

import (
	"context"
	"math"
	"time"

	"thermolab/internal/logger"
	"thermolab/internal/models"
	"thermolab/internal/repository"
	"thermolab/internal/sensor"

	"github.com/google/uuid"
)

// SensorFaultCode marks a sensor that keeps producing invalid readings.
const SensorFaultCode = "SENSOR_FAULT"

// sensorFaultThreshold is the number of consecutive invalid reads before the
// fault is raised on the state.
const sensorFaultThreshold = 3

// PollerService samples the sensor, validates readings, and keeps the
// persisted state's temperature and indicators current.
type PollerService struct {
	src         sensor.Source
	stateRepo   repository.StateRepo
	readingRepo repository.ReadingRepo
	eventRepo   repository.EventRepo
	log         *logger.Logger

	consecutiveInvalid int
}

func NewPollerService(src sensor.Source, stateRepo repository.StateRepo, readingRepo repository.ReadingRepo, eventRepo repository.EventRepo, log *logger.Logger) *PollerService {
	return &PollerService{
		src:         src,
		stateRepo:   stateRepo,
		readingRepo: readingRepo,
		eventRepo:   eventRepo,
		log:         log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *PollerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.poll(ctx, now.UTC())
		}
	}
}

func (s *PollerService) poll(ctx context.Context, now time.Time) {
	celsius, err := s.src.Read(ctx)
	if err == nil {
		err = sensor.Validate(celsius)
	}
	if err != nil {
		s.handleInvalid(ctx, celsius, now, err)
		return
	}
	s.consecutiveInvalid = 0

	tempF := sensor.CToF(celsius)

	if err := s.readingRepo.Insert(ctx, models.Reading{
		Source:  s.src.ID(),
		TempC:   celsius,
		TempF:   tempF,
		TakenAt: now,
	}); err != nil {
		s.log.Errorw("reading_insert_failed", "err", err)
	}

	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		s.log.Errorw("poller_state_load_failed", "err", err)
		return
	}
	if st.ID == 0 {
		st = baselineState()
	}

	// a good reading clears a standing sensor fault
	if hasCode(st.ErrorCodes, SensorFaultCode) {
		st.ErrorCodes = removeCode(st.ErrorCodes, SensorFaultCode)
		s.log.Infow("sensor_fault_cleared", "source", s.src.ID(), "temp_c", celsius)
	}

	st.CurrentTempF = tempF
	st.Indicators = ComputeIndicators(st.Mode, st.CurrentTempF, st.SetpointF)
	st.UpdatedAt = now

	if err := s.stateRepo.Save(ctx, st); err != nil {
		s.log.Errorw("poller_state_save_failed", "err", err)
		return
	}

	s.feedbackDrive(st)
}

// handleInvalid counts consecutive bad reads and raises SENSOR_FAULT once the
// threshold is hit. The loop itself never stops on sensor trouble.
func (s *PollerService) handleInvalid(ctx context.Context, celsius float64, now time.Time, cause error) {
	s.consecutiveInvalid++
	s.log.Warnw("sensor_reading_rejected", "err", cause, "temp_c", celsius, "consecutive", s.consecutiveInvalid)

	if s.consecutiveInvalid < sensorFaultThreshold {
		return
	}

	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		s.log.Errorw("poller_state_load_failed", "err", err)
		return
	}
	if st.ID == 0 {
		st = baselineState()
	}
	if hasCode(st.ErrorCodes, SensorFaultCode) {
		return
	}

	st.ErrorCodes = append(st.ErrorCodes, SensorFaultCode)
	st.UpdatedAt = now
	if err := s.stateRepo.Save(ctx, st); err != nil {
		s.log.Errorw("poller_state_save_failed", "err", err)
		return
	}

	if err := s.eventRepo.Append(ctx, models.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventError,
		Description: "Sensor fault: repeated invalid readings",
		Metadata: map[string]any{
			"source":      s.src.ID(),
			"last_temp_c": sanitizeFloat(celsius),
			"cause":       cause.Error(),
		},
	}); err != nil {
		s.log.Errorw("sensor_fault_event_failed", "err", err)
	}
}

// feedbackDrive tells a simulated source whether the plant is heating or
// cooling, so the simulated room reacts to the controller.
func (s *PollerService) feedbackDrive(st models.ThermostatState) {
	d, ok := s.src.(sensor.Driveable)
	if !ok {
		return
	}

	drive := sensor.DriveIdle
	temp := int(math.Floor(st.CurrentTempF))
	switch st.Mode {
	case models.ModeHeat:
		if temp < st.SetpointF {
			drive = sensor.DriveHeat
		}
	case models.ModeCool:
		if temp > st.SetpointF {
			drive = sensor.DriveCool
		}
	}
	d.SetDrive(drive)
}

func hasCode(codes []string, want string) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func removeCode(codes []string, drop string) []string {
	out := codes[:0]
	for _, c := range codes {
		if c != drop {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sanitizeFloat keeps NaN/Inf out of JSON metadata.
func sanitizeFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
