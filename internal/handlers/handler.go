package handlers

import (
	"net/http"

	"bidtracker/internal/logger"
	"bidtracker/internal/observability"
	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, logging and metrics.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if h.metrics != nil {
		router.Use(h.metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Connection-status push over WebSocket (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
		auth.GET("/session", h.session)
		auth.POST("/sign-out", h.userMiddleware, h.signOut)
		// Reachable with an expired password: it is the way out of that state.
		auth.POST("/change-password", h.userMiddleware, h.changePassword)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userMiddleware, h.freshPasswordMiddleware)
	{
		h.registerBidRoutes(api)
		h.registerSheetRoutes(api)
		api.GET("/status", h.getStatus)

		admin := api.Group("/users", h.adminOnlyMiddleware)
		{
			admin.GET("", h.listUsers)
			admin.POST("", h.createUser)
			admin.DELETE("/:id", h.deleteUser)
		}
	}
}

func (h *Handler) registerBidRoutes(api *gin.RouterGroup) {
	bids := api.Group("/bids")
	{
		bids.GET("", h.listBids)
		bids.POST("", h.createBid)
		bids.PUT("/:id", h.updateBid)
		bids.DELETE("/:id", h.deleteBid)
		bids.POST("/reload", h.reloadBids)
	}
	api.GET("/stats", h.getStats)
}

func (h *Handler) registerSheetRoutes(api *gin.RouterGroup) {
	sheet := api.Group("/sheet")
	{
		sheet.GET("", h.getSheetURL)
		sheet.PUT("", h.setSheetURL)
		sheet.POST("/test", h.testSheet)
		sheet.GET("/script", h.getSheetScript)
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
