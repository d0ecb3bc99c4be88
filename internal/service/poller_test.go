package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"thermolab/internal/logger"
	"thermolab/internal/models"
	"thermolab/internal/sensor"
)

// scriptedSource replays a fixed series of readings and records drive feedback.
type scriptedSource struct {
	readings []float64
	errs     []error
	idx      int
	drives   []sensor.Drive
}

func (s *scriptedSource) ID() string { return "scripted" }

func (s *scriptedSource) Read(ctx context.Context) (float64, error) {
	i := s.idx
	if i >= len(s.readings) {
		i = len(s.readings) - 1
	}
	s.idx++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.readings[i], err
}

func (s *scriptedSource) SetDrive(d sensor.Drive) {
	s.drives = append(s.drives, d)
}

func newTestPoller(src sensor.Source, srepo *fakeStateRepo, rrepo *fakeReadingRepo, erepo *fakeEventRepo) *PollerService {
	return NewPollerService(src, srepo, rrepo, erepo, logger.Get(logger.ErrorLevel))
}

func TestPoller_ValidReadingUpdatesStateAndHistory(t *testing.T) {
	src := &scriptedSource{readings: []float64{20.0}} // 68°F
	srepo := &fakeStateRepo{loadResp: models.ThermostatState{
		ID: 1, Mode: models.ModeHeat, SetpointF: 72, CurrentTempF: 60,
	}}
	rrepo := &fakeReadingRepo{}
	erepo := &fakeEventRepo{}
	p := newTestPoller(src, srepo, rrepo, erepo)

	now := time.Now().UTC()
	p.poll(context.Background(), now)

	if len(rrepo.inserted) != 1 {
		t.Fatalf("expected one reading inserted, got %d", len(rrepo.inserted))
	}
	rd := rrepo.inserted[0]
	if rd.Source != "scripted" || math.Abs(rd.TempF-68) > 1e-9 {
		t.Fatalf("unexpected reading: %+v", rd)
	}

	st := lastSavedState(t, srepo)
	if math.Abs(st.CurrentTempF-68) > 1e-9 {
		t.Fatalf("state temp not updated: %v", st.CurrentTempF)
	}
	if st.Indicators.Red != models.IndicatorPulse {
		t.Fatalf("heating below setpoint should pulse red, got %+v", st.Indicators)
	}
	if !st.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt should be the poll time")
	}

	// 68 < 72 in HEAT: the sim should be told the heater is on
	if len(src.drives) != 1 || src.drives[0] != sensor.DriveHeat {
		t.Fatalf("expected DriveHeat feedback, got %v", src.drives)
	}
}

func TestPoller_InvalidReadingsRaiseSensorFault(t *testing.T) {
	src := &scriptedSource{readings: []float64{500, 500, 500}} // implausibly hot
	srepo := &fakeStateRepo{loadResp: models.ThermostatState{ID: 1, Mode: models.ModeOff, SetpointF: 72}}
	rrepo := &fakeReadingRepo{}
	erepo := &fakeEventRepo{}
	p := newTestPoller(src, srepo, rrepo, erepo)

	now := time.Now().UTC()
	for i := 0; i < sensorFaultThreshold; i++ {
		p.poll(context.Background(), now)
	}

	if len(rrepo.inserted) != 0 {
		t.Fatalf("invalid readings must not be persisted")
	}
	st := lastSavedState(t, srepo)
	if !hasCode(st.ErrorCodes, SensorFaultCode) {
		t.Fatalf("expected SENSOR_FAULT code, got %v", st.ErrorCodes)
	}
	if len(erepo.events) != 1 || erepo.events[0].Type != models.EventError {
		t.Fatalf("expected exactly one ERROR event, got %+v", erepo.events)
	}
}

func TestPoller_FaultRaisedOnceNotEveryTick(t *testing.T) {
	src := &scriptedSource{readings: []float64{500}}
	srepo := &fakeStateRepo{
		loadResp:     models.ThermostatState{ID: 1, Mode: models.ModeOff, SetpointF: 72},
		reflectSaves: true,
	}
	erepo := &fakeEventRepo{}
	p := newTestPoller(src, srepo, &fakeReadingRepo{}, erepo)

	now := time.Now().UTC()
	for i := 0; i < sensorFaultThreshold*3; i++ {
		p.poll(context.Background(), now)
	}
	if len(erepo.events) != 1 {
		t.Fatalf("fault should be logged once, got %d events", len(erepo.events))
	}
}

func TestPoller_FaultStillRaisedAfterLoadHiccup(t *testing.T) {
	src := &scriptedSource{readings: []float64{500}}
	srepo := &fakeStateRepo{
		loadResp:     models.ThermostatState{ID: 1, Mode: models.ModeOff, SetpointF: 72},
		loadErr:      errors.New("db locked"),
		reflectSaves: true,
	}
	erepo := &fakeEventRepo{}
	p := newTestPoller(src, srepo, &fakeReadingRepo{}, erepo)

	// the state load fails on the very read that crosses the threshold
	now := time.Now().UTC()
	for i := 0; i < sensorFaultThreshold; i++ {
		p.poll(context.Background(), now)
	}
	if len(erepo.events) != 0 {
		t.Fatalf("no event expected while state is unreadable, got %d", len(erepo.events))
	}

	// once the store recovers, the next bad read must still raise the fault
	srepo.loadErr = nil
	p.poll(context.Background(), now)

	st := lastSavedState(t, srepo)
	if !hasCode(st.ErrorCodes, SensorFaultCode) {
		t.Fatalf("expected SENSOR_FAULT after store recovery, got %v", st.ErrorCodes)
	}
	if len(erepo.events) != 1 {
		t.Fatalf("expected one ERROR event, got %d", len(erepo.events))
	}
}

func TestPoller_GoodReadingClearsFault(t *testing.T) {
	src := &scriptedSource{readings: []float64{21.0}}
	srepo := &fakeStateRepo{loadResp: models.ThermostatState{
		ID: 1, Mode: models.ModeOff, SetpointF: 72,
		ErrorCodes: []string{SensorFaultCode},
	}}
	p := newTestPoller(src, srepo, &fakeReadingRepo{}, &fakeEventRepo{})

	p.poll(context.Background(), time.Now().UTC())

	st := lastSavedState(t, srepo)
	if hasCode(st.ErrorCodes, SensorFaultCode) {
		t.Fatalf("good reading should clear the fault, got %v", st.ErrorCodes)
	}
}

func TestPoller_DriveIdleWhenSatisfied(t *testing.T) {
	// 25°C = 77°F, above a HEAT setpoint of 72: heater off
	src := &scriptedSource{readings: []float64{25.0}}
	srepo := &fakeStateRepo{loadResp: models.ThermostatState{
		ID: 1, Mode: models.ModeHeat, SetpointF: 72, CurrentTempF: 77,
	}}
	p := newTestPoller(src, srepo, &fakeReadingRepo{}, &fakeEventRepo{})

	p.poll(context.Background(), time.Now().UTC())

	if len(src.drives) != 1 || src.drives[0] != sensor.DriveIdle {
		t.Fatalf("expected DriveIdle, got %v", src.drives)
	}
}

func TestRemoveCode(t *testing.T) {
	if got := removeCode([]string{"A", SensorFaultCode, "B"}, SensorFaultCode); len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got := removeCode([]string{SensorFaultCode}, SensorFaultCode); got != nil {
		t.Fatalf("expected nil when emptied, got %v", got)
	}
}
