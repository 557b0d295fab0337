package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) platformStats(c *gin.Context) {
	stats, err := h.stats.Platform(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(*stats))
}
