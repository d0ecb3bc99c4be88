package handlers

import (
	"thermolab/internal/logger"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Minimal WebSocket connection (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerThermostatRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerThermostatRoutes(api *gin.RouterGroup) {
	thermostat := api.Group("/thermostat")
	{
		thermostat.POST("/cycle", h.cycleMode)
		// Body example: {"mode":"HEAT"}
		thermostat.POST("/mode", h.setMode)
		// Body example: {"setpoint_f":74} or {"delta":1}
		thermostat.POST("/setpoint", h.setSetpoint)
		thermostat.GET("/state", h.getState)
	}
	api.POST("/light", h.setLight)
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	api.GET("/readings", h.getReadings)
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
