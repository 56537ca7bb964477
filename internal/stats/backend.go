package stats

import (
	"net/http"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/gin-gonic/gin"
)

// BackendOptions configures the stub management endpoint.
type BackendOptions struct {
	DiskPath      string
	DiskThreshold uint64
	CPUInterval   time.Duration
}

// BackendHandler serves actuator-shaped endpoints backed by live host statistics.
type BackendHandler struct {
	repo *TraceRepository
	opts BackendOptions
}

func NewBackendHandler(repo *TraceRepository, opts BackendOptions) *BackendHandler {
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	if opts.DiskThreshold == 0 {
		opts.DiskThreshold = DefaultDiskThreshold
	}
	if opts.CPUInterval <= 0 {
		opts.CPUInterval = 200 * time.Millisecond
	}
	return &BackendHandler{repo: repo, opts: opts}
}

func (h *BackendHandler) GetTraces(c *gin.Context) {
	c.JSON(http.StatusOK, models.TraceList{Traces: h.repo.FindAll()})
}

func (h *BackendHandler) GetCPU(c *gin.Context) {
	metric, err := CPUMetric(c.Request.Context(), h.opts.CPUInterval)
	if err != nil {
		appLogger.Error("Failed to sample CPU: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metric)
}

func (h *BackendHandler) GetHealth(c *gin.Context) {
	health, err := HealthReport(c.Request.Context(), h.opts.DiskPath, h.opts.DiskThreshold)
	if err != nil {
		appLogger.Error("Failed to build health report: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusDown, "error": err.Error()})
		return
	}
	code := http.StatusOK
	if health.Status != StatusUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

func (h *BackendHandler) GetUptime(c *gin.Context) {
	metric, err := UptimeMetric(c.Request.Context())
	if err != nil {
		appLogger.Error("Failed to read process uptime: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metric)
}

// demo endpoints produce traffic in every status class
func (h *BackendHandler) demo(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(status, gin.H{"status": status, "message": http.StatusText(status)})
	}
}

// DemoPaths lists the demo endpoints, for traffic generation.
var DemoPaths = []string{"/demo/ok", "/demo/ok", "/demo/ok", "/demo/bad-request", "/demo/missing", "/demo/error", "/demo/created", "/demo/unavailable"}

// RegisterRoutes registers the management and demo routes.
func (h *BackendHandler) RegisterRoutes(router *gin.Engine) {
	actuator := router.Group("/actuator")
	{
		actuator.GET("/httptrace", h.GetTraces)
		actuator.GET("/metrics/system.cpu.usage", h.GetCPU)
		actuator.GET("/health", h.GetHealth)
		actuator.GET("/metrics/process.uptime", h.GetUptime)
	}

	demo := router.Group("/demo")
	{
		demo.GET("/ok", h.demo(http.StatusOK))
		demo.GET("/created", h.demo(http.StatusCreated))
		demo.GET("/bad-request", h.demo(http.StatusBadRequest))
		demo.GET("/error", h.demo(http.StatusInternalServerError))
		demo.GET("/unavailable", h.demo(http.StatusServiceUnavailable))
	}
	router.NoRoute(h.demo(http.StatusNotFound))
}
