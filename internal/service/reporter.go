package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"thermolab/internal/logger"
	"thermolab/internal/models"
	"thermolab/internal/mqtt"
	"thermolab/internal/repository"
	"thermolab/internal/uart"

	"github.com/google/uuid"
)

// ReporterService emits the telemetry frame every interval: over UART when a
// port is wired, to MQTT when a broker is configured, and always into the log.
type ReporterService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	writer    *uart.Writer    // nil when serial is disabled
	pub       *mqtt.Publisher // nil when mqtt is disabled
	log       *logger.Logger
}

func NewReporterService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, writer *uart.Writer, pub *mqtt.Publisher, log *logger.Logger) *ReporterService {
	return &ReporterService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		writer:    writer,
		pub:       pub,
		log:       log,
	}
}

// telemetryPayload is the MQTT JSON rendition of the frame.
type telemetryPayload struct {
	Mode      string    `json:"mode"`
	TempF     int       `json:"temp_f"`
	SetpointF int       `json:"setpoint_f"`
	SentAt    time.Time `json:"sent_at"`
}

// Run emits one frame per interval until ctx is canceled.
func (s *ReporterService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.report(ctx, now.UTC())
		}
	}
}

func (s *ReporterService) report(ctx context.Context, now time.Time) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		s.log.Errorw("reporter_state_load_failed", "err", err)
		return
	}
	if st.ID == 0 {
		st = baselineState()
	}

	frame := uart.TelemetryFrame{
		Mode:      st.Mode,
		TempF:     int(math.Floor(st.CurrentTempF)),
		SetpointF: st.SetpointF,
	}
	line := frame.Encode()

	if s.writer != nil {
		if err := s.writer.WriteLine(line); err != nil {
			// retries exhausted; record and carry on
			s.log.Errorw("uart_write_failed", "err", err, "frame", line)
			s.appendEvent(ctx, models.ThermostatEvent{
				OccurredAt:  now,
				Type:        models.EventError,
				Description: "UART telemetry write failed",
				Metadata:    map[string]any{"frame": line, "cause": err.Error()},
			})
		}
	}

	if s.pub != nil {
		payload, err := json.Marshal(telemetryPayload{
			Mode:      frame.Mode,
			TempF:     frame.TempF,
			SetpointF: frame.SetpointF,
			SentAt:    now,
		})
		if err == nil {
			if err := s.pub.Publish(payload); err != nil {
				s.log.Warnw("mqtt_publish_failed", "err", err)
			}
		}
	}

	s.log.Debugw("telemetry", "frame", line)
	s.appendEvent(ctx, models.ThermostatEvent{
		OccurredAt:  now,
		Type:        models.EventTelemetry,
		Description: "Telemetry frame sent",
		Metadata: map[string]any{
			"mode":       frame.Mode,
			"temp_f":     frame.TempF,
			"setpoint_f": frame.SetpointF,
		},
	})
}

func (s *ReporterService) appendEvent(ctx context.Context, e models.ThermostatEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Errorw("reporter_event_append_failed", "err", err, "type", e.Type)
	}
}
