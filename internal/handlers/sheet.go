package handlers

import (
	"errors"
	"net/http"

	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"
)

type sheetURLRequest struct {
	URL string `json:"url"`
}

// @Summary      Get remote sheet configuration
// @Tags         sheet
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "configured, url"
// @Router       /api/v1/sheet [get]
// @Security     BearerAuth
func (h *Handler) getSheetURL(c *gin.Context) {
	url, ok := h.services.URL(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"configured": ok, "url": url})
}

// @Summary      Set remote sheet URL
// @Description  An empty URL clears the configuration and disables sync.
// @Tags         sheet
// @Accept       json
// @Produce      json
// @Param        body  body  sheetURLRequest  true  "Web-app URL"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/sheet [put]
// @Security     BearerAuth
func (h *Handler) setSheetURL(c *gin.Context) {
	var input sheetURLRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	if err := h.services.SetURL(c.Request.Context(), input.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// @Summary      Test sheet connectivity
// @Description  Probes the given URL, or the stored one when the body is empty.
// @Tags         sheet
// @Accept       json
// @Produce      json
// @Param        body  body  sheetURLRequest  false  "URL to probe"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sheet/test [post]
// @Security     BearerAuth
func (h *Handler) testSheet(c *gin.Context) {
	var input sheetURLRequest
	// Body is optional; an empty one probes the stored URL.
	_ = c.ShouldBindJSON(&input)

	msg, err := h.services.Sheet.Test(c.Request.Context(), input.URL)
	if err != nil {
		if errors.Is(err, service.ErrNoSheetURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "sheet_test_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// @Summary      Companion Apps Script source
// @Tags         sheet
// @Produce      plain
// @Success      200  {string}  string
// @Router       /api/v1/sheet/script [get]
// @Security     BearerAuth
func (h *Handler) getSheetScript(c *gin.Context) {
	c.String(http.StatusOK, h.services.Script())
}
