// server/internal/handlers/predict.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/repository"
	"github.com/geordievannese/garuda-calculator/server/internal/scoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PredictHandler serves the scoring API.
type PredictHandler struct {
	log      *zap.Logger
	recorder repository.PredictionRecorder
	history  repository.PredictionHistory
	metrics  *metrics.Registry
}

// NewPredictHandler creates the handler. history may be nil when no database is configured.
func NewPredictHandler(log *zap.Logger, recorder repository.PredictionRecorder, history repository.PredictionHistory, m *metrics.Registry) *PredictHandler {
	return &PredictHandler{log: log, recorder: recorder, history: history, metrics: m}
}

// Predict scores one predictor record.
func (h *PredictHandler) Predict(c *gin.Context) {
	var in scoring.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.metrics.Inc(metrics.PredictionsDenied)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}
	if err := in.Validate(); err != nil {
		h.metrics.Inc(metrics.PredictionsDenied)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	resp := scoring.Compute(&in)
	h.metrics.Inc(metrics.PredictionsServed)
	h.record(c, &in, resp)
	c.JSON(http.StatusOK, resp)
}

// record appends the prediction to the log. Failures are logged, never returned to the client.
func (h *PredictHandler) record(c *gin.Context, in *scoring.Input, resp *models.PredictionResponse) {
	request, err := json.Marshal(in)
	if err != nil {
		h.log.Error("Failed to encode prediction input", zap.Error(err))
		return
	}
	entry := &models.PredictionLog{
		ClientIP:         c.ClientIP(),
		Request:          string(request),
		GCSLt15:          resp.Derived.GCSLt15,
		DNRatio:          resp.Derived.DNRatio,
		NeckGt4:          resp.Derived.NeckGt4,
		PredictionResult: resp.PredictionResult,
	}
	if err := h.recorder.SavePrediction(c.Request.Context(), entry); err != nil {
		h.log.Error("Failed to save prediction log", zap.Error(err))
	}
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// Recent lists the newest logged predictions and the count over the last day.
func (h *PredictHandler) Recent(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction log disabled"})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	ctx := c.Request.Context()
	entries, err := h.history.RecentPredictions(ctx, limit)
	if err != nil {
		h.log.Error("Failed to read prediction log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read prediction log"})
		return
	}
	lastDay, err := h.history.CountSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		h.log.Error("Failed to count predictions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read prediction log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"last_24h":    lastDay,
		"predictions": entries,
	})
}
