package api

import (
	"context"
	"net/http"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/gin-gonic/gin"
)

// HistoryReader reads recorded bucket counts back, e.g. from InfluxDB.
type HistoryReader interface {
	GetBucketHistory(ctx context.Context, rangeStart, aggregateInterval time.Duration) ([]models.HistoryPoint, error)
}

// HistoryHandler serves bucket-count history. A nil reader means history is not configured.
type HistoryHandler struct {
	reader HistoryReader
}

func NewHistoryHandler(reader HistoryReader) *HistoryHandler {
	return &HistoryHandler{reader: reader}
}

// GetHistory handles GET /api/dashboard/history?range=1h&aggregate=30s
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is not configured"})
		return
	}

	rangeDuration, err := time.ParseDuration(c.DefaultQuery("range", "1h"))
	if err != nil || rangeDuration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid range duration format"})
		return
	}
	aggregateInterval, err := time.ParseDuration(c.DefaultQuery("aggregate", "30s"))
	if err != nil || aggregateInterval <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid aggregate interval format"})
		return
	}

	history, err := h.reader.GetBucketHistory(c.Request.Context(), rangeDuration, aggregateInterval)
	if err != nil {
		appLogger.Error("Failed to get bucket history for range %s: %v", rangeDuration, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bucket history"})
		return
	}
	if history == nil {
		history = []models.HistoryPoint{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *HistoryHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/dashboard/history", h.GetHistory)
}
