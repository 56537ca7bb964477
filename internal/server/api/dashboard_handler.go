package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/dashboard"
	"github.com/4Noyis/actuator-dashboard/internal/server/web"
	"github.com/4Noyis/actuator-dashboard/pkg/exporter"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const uptimeWriteWait = 10 * time.Second

// DashboardHandler holds dependencies for the dashboard page and API handlers.
type DashboardHandler struct {
	presenter *dashboard.Presenter
	upgrader  websocket.Upgrader
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(presenter *dashboard.Presenter) *DashboardHandler {
	return &DashboardHandler{
		presenter: presenter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// GetIndex handles GET /
func (h *DashboardHandler) GetIndex(c *gin.Context) {
	c.HTML(http.StatusOK, web.IndexTemplate, gin.H{
		"Snapshot": h.presenter.Snapshot(),
		"Page":     h.presenter.Page(1),
	})
}

// GetState handles GET /api/dashboard/state. Pending alerts are delivered once.
func (h *DashboardHandler) GetState(c *gin.Context) {
	snap := h.presenter.Snapshot()
	snap.Alerts = h.presenter.DrainAlerts()
	c.JSON(http.StatusOK, snap)
}

// PostRefresh handles POST /api/dashboard/refresh
func (h *DashboardHandler) PostRefresh(c *gin.Context) {
	h.presenter.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// GetTraces handles GET /api/dashboard/traces?page=N
func (h *DashboardHandler) GetTraces(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page number"})
		return
	}
	c.JSON(http.StatusOK, h.presenter.Page(page))
}

// GetTraceByID handles GET /api/dashboard/traces/:traceID
func (h *DashboardHandler) GetTraceByID(c *gin.Context) {
	traceID := c.Param("traceID")
	trace, ok := h.presenter.Trace(traceID)
	if !ok {
		appLogger.Warn("Trace %s not found", traceID)
		c.JSON(http.StatusNotFound, gin.H{"error": "Trace not found"})
		return
	}
	c.JSON(http.StatusOK, trace)
}

// GetCharts handles GET /api/dashboard/charts
func (h *DashboardHandler) GetCharts(c *gin.Context) {
	c.JSON(http.StatusOK, h.presenter.Charts())
}

// GetExport handles GET /api/dashboard/export
func (h *DashboardHandler) GetExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := exporter.WriteTraceTable(&buf, h.presenter.Traces()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export traces"})
		return
	}
	c.Header("Content-Disposition", exporter.ContentDisposition())
	c.Data(http.StatusOK, exporter.ContentType, buf.Bytes())
}

type uptimeMessage struct {
	Uptime  string `json:"uptime"`
	Seconds int64  `json:"seconds"`
}

// StreamUptime handles GET /ws/uptime, pushing the uptime counter on every change.
func (h *DashboardHandler) StreamUptime(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		appLogger.Warn("Websocket upgrade failed for %s: %v", c.ClientIP(), err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.presenter.SubscribeUptime()
	defer unsubscribe()

	// the client never sends anything; reading detects the close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case view, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(uptimeWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(uptimeWriteWait))
			if err := conn.WriteJSON(uptimeMessage{Uptime: view.Display, Seconds: view.Seconds}); err != nil {
				appLogger.Debug("Uptime stream to %s ended: %v", c.ClientIP(), err)
				return
			}
		}
	}
}

// RegisterDashboardRoutes registers the page, API and websocket routes.
func (h *DashboardHandler) RegisterDashboardRoutes(router *gin.Engine) {
	router.GET("/", h.GetIndex)
	router.GET("/ws/uptime", h.StreamUptime)

	dashboardGroup := router.Group("/api/dashboard")
	{
		dashboardGroup.GET("/state", h.GetState)
		dashboardGroup.POST("/refresh", h.PostRefresh)
		dashboardGroup.GET("/traces", h.GetTraces)
		dashboardGroup.GET("/traces/:traceID", h.GetTraceByID)
		dashboardGroup.GET("/charts", h.GetCharts)
		dashboardGroup.GET("/export", h.GetExport)
	}
}
