package stats

import (
	"sync"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/gin-gonic/gin"
)

// DefaultTraceCapacity matches the in-memory repository size of Spring Boot.
const DefaultTraceCapacity = 100

// TraceRepository keeps the most recent exchanges, newest first.
type TraceRepository struct {
	mu       sync.Mutex
	capacity int
	traces   []models.Trace
}

func NewTraceRepository(capacity int) *TraceRepository {
	if capacity <= 0 {
		capacity = DefaultTraceCapacity
	}
	return &TraceRepository{capacity: capacity}
}

// Add records a trace, evicting the oldest one when full.
func (r *TraceRepository) Add(t models.Trace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces = append([]models.Trace{t}, r.traces...)
	if len(r.traces) > r.capacity {
		r.traces = r.traces[:r.capacity]
	}
}

// FindAll returns a copy of the stored traces, newest first.
func (r *TraceRepository) FindAll() []models.Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Trace{}, r.traces...)
}

// Middleware records every request handled by the router.
func (r *TraceRepository) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqHeaders := c.Request.Header.Clone()

		c.Next()

		status := c.Writer.Status()
		r.Add(models.Trace{
			Timestamp: start.UTC(),
			Request: models.TraceRequest{
				Method:        c.Request.Method,
				URI:           requestURI(c),
				Headers:       reqHeaders,
				RemoteAddress: c.ClientIP(),
			},
			Response: models.TraceResponse{
				Status:  &status,
				Headers: c.Writer.Header().Clone(),
			},
			TimeTaken: time.Since(start).Milliseconds(),
		})
	}
}

func requestURI(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
