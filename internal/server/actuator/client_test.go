package actuator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/actuator/httptrace", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"traces":[
			{"request":{"method":"GET","uri":"/a"},"response":{"status":200}},
			{"request":{"method":"POST","uri":"/b"},"response":{"status":500}}
		]}`))
	})
	mux.HandleFunc("/actuator/metrics/system.cpu.usage", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"system.cpu.usage","description":"The recent cpu usage","baseUnit":null,"measurements":[{"statistic":"VALUE","value":0.25}],"availableTags":[]}`))
	})
	mux.HandleFunc("/actuator/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"UP","details":{"diskSpace":{"status":"UP","details":{"total":2048,"free":1536,"threshold":10}}}}`))
	})
	mux.HandleFunc("/actuator/metrics/process.uptime", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"process.uptime","baseUnit":"seconds","measurements":[{"statistic":"VALUE","value":90.4}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchesAllDatasets(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL+"/actuator/", time.Second)
	assert.Equal(t, srv.URL+"/actuator", c.BaseURL())
	ctx := context.Background()

	traces, err := c.GetHTTPTraces(ctx)
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "/b", traces[1].Request.URI)

	cpu, err := c.GetSystemCPU(ctx)
	require.NoError(t, err)
	assert.Equal(t, "system.cpu.usage", cpu.Name)
	v, ok := cpu.FirstValue()
	assert.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-9)

	health, err := c.GetSystemHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UP", health.Status)
	require.NotNil(t, health.Details.DiskSpace)
	assert.Equal(t, uint64(1536), health.Details.DiskSpace.Details.Free)

	uptime, err := c.GetProcessUptime(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seconds", uptime.BaseUnit)
}

func TestClient_EmptyTraceListIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	traces, err := NewClient(srv.URL, 0).GetHTTPTraces(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, traces)
	assert.Empty(t, traces)
}

func TestClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "actuator disabled", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetSystemHealth(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "actuator disabled")
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetSystemCPU(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_UptimeWithoutMeasurements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"process.uptime","measurements":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetProcessUptime(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no measurements")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).GetHTTPTraces(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).GetHTTPTraces(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}
