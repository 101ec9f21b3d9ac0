package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shelftrack/core/stats"
)

// StatsHandler handles the stats REST endpoint.
type StatsHandler struct {
	aggregator *stats.Aggregator
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(a *stats.Aggregator) *StatsHandler {
	return &StatsHandler{aggregator: a}
}

// Get handles GET /api/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.Overview(c.Request.Context()))
}
