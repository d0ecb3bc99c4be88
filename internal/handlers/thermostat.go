package handlers

import (
	"net/http"

	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK          = "ok"
	statusCycled      = "cycled"
	statusModeSet     = "mode_set"
	statusSetpointSet = "setpoint_set"
	statusLightSet    = "light_set"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for setting mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // OFF | HEAT | COOL
}

// Request DTO for setpoint changes.
type setpointRequest struct {
	SetpointF int `json:"setpoint_f,omitempty"` // absolute °F target
	Delta     int `json:"delta,omitempty"`      // relative change (+1/-1)
}

// Request DTO for the light.
type lightRequest struct {
	On *bool `json:"on" binding:"required"`
}

// SetModeRequest is an exported model for Swagger docs of the setMode payload.
type SetModeRequest struct {
	// Mode to set. Allowed: OFF, HEAT, COOL
	Mode string `json:"mode" example:"HEAT"`
}

// SetSetpointRequest is an exported model for Swagger docs of the setSetpoint payload.
type SetSetpointRequest struct {
	// Absolute setpoint in Fahrenheit, within [40, 90]
	SetpointF int `json:"setpoint_f,omitempty" example:"74"`
	// Relative change in Fahrenheit (used when setpoint_f is absent)
	Delta int `json:"delta,omitempty" example:"1"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Cycle mode
// @Description  Advances OFF -> HEAT -> COOL -> OFF
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/cycle [post]
// @Security     BearerAuth
func (h *Handler) cycleMode(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Thermostat.Cycle(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to cycle mode", "thermostat_cycle_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusCycled, gin.H{})
}

// @Summary      Set mode
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetMode(ctx, req.Mode); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_mode_failed", "err", err, "mode", req.Mode)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusModeSet, gin.H{"mode": req.Mode})
}

// @Summary      Set setpoint
// @Description  Absolute setpoint_f must be within [40, 90]; delta moves the current setpoint and clamps at the bounds
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetSetpointRequest  true  "Setpoint payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/setpoint [post]
// @Security     BearerAuth
func (h *Handler) setSetpoint(c *gin.Context) {
	var req setpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.SetpointF == 0 && req.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either setpoint_f or delta is required"})
		return
	}
	ctx := c.Request.Context()
	params := service.SetpointParams{
		SetpointF: req.SetpointF,
		Delta:     req.Delta,
	}
	if err := h.services.Thermostat.SetSetpoint(ctx, params); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_setpoint_failed", "err", err, "setpoint_f", req.SetpointF, "delta", req.Delta)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSetpointSet, gin.H{})
}

// @Summary      Set light
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   object{on=bool}  true  "Light payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/light [post]
// @Security     BearerAuth
func (h *Handler) setLight(c *gin.Context) {
	var req lightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetLight(ctx, *req.On); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to set light", "light_set_failed", err, "on", *req.On)
		return
	}
	h.respondWithStatusAndState(c, statusLightSet, gin.H{"on": *req.On})
}

// @Summary      Get thermostat state
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "thermostat_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
