package service

import (
	"context"
	"io"
	"time"

	"thermolab/internal/gpio"
	"thermolab/internal/logger"
	"thermolab/internal/models"
	"thermolab/internal/mqtt"
	"thermolab/internal/repository"
	"thermolab/internal/sensor"
	"thermolab/internal/uart"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Thermostat exposes control operations: mode cycling and setpoint changes,
// plus the serially controlled light.
type Thermostat interface {
	Cycle(ctx context.Context) error
	SetMode(ctx context.Context, mode string) error
	SetSetpoint(ctx context.Context, p SetpointParams) error
	SetLight(ctx context.Context, on bool) error
}

// Monitoring exposes read-only state and readings history.
type Monitoring interface {
	GetState(ctx context.Context) (models.ThermostatState, error)
	ListReadings(ctx context.Context, f ReadingFilter) ([]models.Reading, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ThermostatEvent, error)
}

// Poller runs the background loop that samples the sensor and updates state.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// Reporter emits the periodic telemetry frame over UART and MQTT.
type Reporter interface {
	Run(ctx context.Context, interval time.Duration)
}

// LightControl consumes serial commands until ctx is canceled or "exit" arrives.
type LightControl interface {
	Run(ctx context.Context)
}

// DisplayLoop renders the 16x2 status display.
type DisplayLoop interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Thermostat
	Monitoring
	EventLog
	Authorization

	Poller   Poller
	Reporter Reporter
	Lights   LightControl // nil when no serial port is configured
	Display  DisplayLoop
}

// Deps carries the hardware-facing dependencies wired up in main().
type Deps struct {
	Source     sensor.Source
	Red, Blue  *gpio.LED
	LightPin   gpio.Pin
	Port       io.ReadWriteCloser // nil when serial is disabled
	Publisher  *mqtt.Publisher    // nil when mqtt is disabled
	Display    Display            // nil falls back to the log-backed display
	SigningKey string             // JWT key; empty falls back to the built-in dev key
	Log        *logger.Logger
}

// NewService wires the repository layer and hardware deps into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	thermo := NewThermostatService(repos.StateRepo, repos.EventRepo, deps.Red, deps.Blue, deps.LightPin)
	mon := NewMonitoringService(repos.StateRepo, repos.ReadingRepo)

	var writer *uart.Writer
	var lights LightControl
	if deps.Port != nil {
		writer = uart.NewWriter(deps.Port)
		lights = NewLightControlService(deps.Port, thermo, deps.Log)
	}

	disp := deps.Display
	if disp == nil {
		disp = NewLogDisplay(deps.Log)
	}

	return &Service{
		Thermostat:    thermo,
		Monitoring:    mon,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, deps.SigningKey),
		Poller:        NewPollerService(deps.Source, repos.StateRepo, repos.ReadingRepo, repos.EventRepo, deps.Log),
		Reporter:      NewReporterService(repos.StateRepo, repos.EventRepo, writer, deps.Publisher, deps.Log),
		Lights:        lights,
		Display:       NewDisplayService(mon, disp, deps.Log),
	}
}
