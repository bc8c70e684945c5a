package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bidtracker"
	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errListBids  = "입찰 목록을 불러오지 못했습니다."
	errSaveBid   = "입찰 정보를 저장하지 못했습니다."
	errDeleteBid = "입찰 정보를 삭제하지 못했습니다."
)

// yearQuery parses ?year=; 0 means all years.
func yearQuery(c *gin.Context) int {
	y, err := strconv.Atoi(c.Query("year"))
	if err != nil || y < 0 {
		return 0
	}
	return y
}

// @Summary      List bids
// @Tags         bids
// @Produce      json
// @Param        year  query  int     false  "Target year filter; omit for all"
// @Param        sort  query  string  false  "Column key, e.g. clientName"
// @Param        dir   query  string  false  "asc or desc"
// @Success      200  {object}  map[string]interface{}  "items, count"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/bids [get]
// @Security     BearerAuth
func (h *Handler) listBids(c *gin.Context) {
	items := h.services.List(c.Request.Context(), yearQuery(c), c.Query("sort"), c.Query("dir"))
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary      Create bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        body  body  bidtracker.Bid  true  "Bid payload; id is assigned server-side"
// @Success      201  {object}  bidtracker.Bid
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/bids [post]
// @Security     BearerAuth
func (h *Handler) createBid(c *gin.Context) {
	var input bidtracker.Bid
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	created, err := h.services.Bids.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrSyncFailed) {
			h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "bid_create_sync_failed", err)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveBid, "bid_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary      Update bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Bid ID"
// @Param        body  body  bidtracker.Bid  true  "Full bid payload"
// @Success      200  {object}  bidtracker.Bid
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/bids/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateBid(c *gin.Context) {
	var input bidtracker.Bid
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	input.ID = c.Param("id")

	if err := h.services.Bids.Update(c.Request.Context(), input); err != nil {
		switch {
		case errors.Is(err, service.ErrBidNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSyncFailed):
			h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "bid_update_sync_failed", err, "id", input.ID)
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errSaveBid, "bid_update_failed", err, "id", input.ID)
		}
		return
	}
	c.JSON(http.StatusOK, input)
}

// @Summary      Delete bid
// @Tags         bids
// @Produce      json
// @Param        id  path  string  true  "Bid ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/bids/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteBid(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Bids.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrBidNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSyncFailed):
			h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "bid_delete_sync_failed", err, "id", id)
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errDeleteBid, "bid_delete_failed", err, "id", id)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Reload bids from the remote sheet
// @Tags         bids
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "items, count"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/bids/reload [post]
// @Security     BearerAuth
func (h *Handler) reloadBids(c *gin.Context) {
	items, err := h.services.Reload(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "bid_reload_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary      Dashboard statistics
// @Description  Aggregates one year of bids; Test-category rows are excluded.
// @Tags         bids
// @Produce      json
// @Param        year  query  int  false  "Target year; omit for all"
// @Success      200  {object}  bidtracker.DashboardStats
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Stats(c.Request.Context(), yearQuery(c)))
}
