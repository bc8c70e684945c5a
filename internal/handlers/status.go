package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Remote connection status
// @Description  Latest snapshot from the background prober.
// @Tags         system
// @Produce      json
// @Success      200  {object}  bidtracker.ConnectionStatus
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status())
}
