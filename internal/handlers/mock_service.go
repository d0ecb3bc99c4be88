package handlers

import (
	"context"
	"net/http"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockThermostat struct {
	cycleErr    error
	setModeErr  error
	setpointErr error
	lightErr    error

	cycleCalls    int
	setModeCalls  int
	setpointCalls int
	lightCalls    int

	lastMode     string
	lastSetpoint service.SetpointParams
	lastLightOn  bool
}

func (m *mockThermostat) Cycle(ctx context.Context) error {
	m.cycleCalls++
	return m.cycleErr
}
func (m *mockThermostat) SetMode(ctx context.Context, mode string) error {
	m.setModeCalls++
	m.lastMode = mode
	return m.setModeErr
}
func (m *mockThermostat) SetSetpoint(ctx context.Context, p service.SetpointParams) error {
	m.setpointCalls++
	m.lastSetpoint = p
	return m.setpointErr
}
func (m *mockThermostat) SetLight(ctx context.Context, on bool) error {
	m.lightCalls++
	m.lastLightOn = on
	return m.lightErr
}

type mockMonitoring struct {
	state    models.ThermostatState
	stateErr error

	readings    []models.Reading
	readingsErr error
	lastFilter  service.ReadingFilter
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ThermostatState, error) {
	return m.state, m.stateErr
}
func (m *mockMonitoring) ListReadings(ctx context.Context, f service.ReadingFilter) ([]models.Reading, error) {
	m.lastFilter = f
	return m.readings, m.readingsErr
}

type mockEventLog struct {
	resp     []models.ThermostatEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ThermostatEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
