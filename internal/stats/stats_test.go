package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDiskHealth(t *testing.T) {
	up := diskHealth(1000, 500, 100)
	assert.Equal(t, StatusUp, up.Status)
	require.NotNil(t, up.Details.DiskSpace)
	assert.Equal(t, uint64(500), up.Details.DiskSpace.Details.Free)
	assert.Equal(t, uint64(100), up.Details.DiskSpace.Details.Threshold)
	assert.True(t, up.Details.DiskSpace.Details.Exists)

	down := diskHealth(1000, 50, 100)
	assert.Equal(t, StatusDown, down.Status)
	assert.Equal(t, StatusDown, down.Details.DiskSpace.Status)
}

func TestUptimeMetric(t *testing.T) {
	now := time.Now()
	m := uptimeMetric(now, now.Add(-90*time.Second))
	v, ok := m.FirstValue()
	require.True(t, ok)
	assert.InDelta(t, 90, v, 0.001)
	assert.Equal(t, "seconds", m.BaseUnit)

	future := uptimeMetric(now, now.Add(time.Minute))
	v, _ = future.FirstValue()
	assert.Equal(t, 0.0, v)
}

func TestUptimeMetric_OwnProcess(t *testing.T) {
	m, err := UptimeMetric(context.Background())
	require.NoError(t, err)
	v, ok := m.FirstValue()
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 0.0)
}

func TestHealthReport_TempDir(t *testing.T) {
	h, err := HealthReport(context.Background(), t.TempDir(), 1)
	require.NoError(t, err)
	require.NotNil(t, h.Details.DiskSpace)
	assert.Greater(t, h.Details.DiskSpace.Details.Total, uint64(0))
}

func TestTraceRepository_NewestFirstAndBounded(t *testing.T) {
	repo := NewTraceRepository(3)
	for i := 0; i < 5; i++ {
		repo.Add(models.Trace{ID: fmt.Sprintf("t%d", i)})
	}
	all := repo.FindAll()
	require.Len(t, all, 3)
	assert.Equal(t, "t4", all[0].ID)
	assert.Equal(t, "t2", all[2].ID)

	all[0].ID = "changed"
	assert.Equal(t, "t4", repo.FindAll()[0].ID, "FindAll returns a copy")
}

func TestTraceRepository_DefaultCapacity(t *testing.T) {
	repo := NewTraceRepository(0)
	for i := 0; i < DefaultTraceCapacity+10; i++ {
		repo.Add(models.Trace{})
	}
	assert.Len(t, repo.FindAll(), DefaultTraceCapacity)
}

func newBackendRouter(t *testing.T) (*gin.Engine, *TraceRepository) {
	t.Helper()
	repo := NewTraceRepository(10)
	router := gin.New()
	router.Use(repo.Middleware())
	NewBackendHandler(repo, BackendOptions{DiskPath: t.TempDir(), DiskThreshold: 1, CPUInterval: 10 * time.Millisecond}).RegisterRoutes(router)
	return router, repo
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBackend_RecordsDemoTraffic(t *testing.T) {
	router, _ := newBackendRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, "/demo/ok").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "/demo/bad-request").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/nowhere").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, "/demo/error").Code)

	w := serve(router, "/actuator/httptrace")
	require.Equal(t, http.StatusOK, w.Code)

	var list models.TraceList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Traces, 4, "the httptrace request itself is recorded after it responds")

	codes := []int{}
	for _, tr := range list.Traces {
		code, ok := tr.StatusCode()
		require.True(t, ok)
		codes = append(codes, code)
	}
	assert.Equal(t, []int{500, 404, 400, 200}, codes)
	assert.Equal(t, "GET", list.Traces[0].Request.Method)
	assert.Contains(t, list.Traces[0].Request.URI, "/demo/error")
}

func TestBackend_MetricsAndHealth(t *testing.T) {
	router, _ := newBackendRouter(t)

	w := serve(router, "/actuator/metrics/system.cpu.usage")
	require.Equal(t, http.StatusOK, w.Code)
	var cpu models.Metric
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cpu))
	assert.Equal(t, "system.cpu.usage", cpu.Name)
	v, ok := cpu.FirstValue()
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 1.0)

	w = serve(router, "/actuator/health")
	require.Equal(t, http.StatusOK, w.Code)
	var health models.SystemHealth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, StatusUp, health.Status)
	require.NotNil(t, health.Details.DiskSpace)

	w = serve(router, "/actuator/metrics/process.uptime")
	require.Equal(t, http.StatusOK, w.Code)
	var uptime models.Metric
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uptime))
	assert.Equal(t, "process.uptime", uptime.Name)
}
