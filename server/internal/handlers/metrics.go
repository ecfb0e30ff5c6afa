// server/internal/handlers/metrics.go
package handlers

import (
	"net/http"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MetricsHandler struct {
	log     *zap.Logger
	metrics *metrics.Registry
	started time.Time
}

func NewMetricsHandler(log *zap.Logger, m *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{log: log, metrics: m, started: time.Now()}
}

// ShowMetrics dumps the registry as JSON.
func (h *MetricsHandler) ShowMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "metrics disabled"})
		return
	}
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	h.metrics.WriteJSON(c.Writer)
}

func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}
