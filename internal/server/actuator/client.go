// Package actuator reads traces, metrics and health reports from a Spring Boot
// style management endpoint.
package actuator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/pkg/errors"
)

const (
	tracesPath = "/httptrace"
	cpuPath    = "/metrics/system.cpu.usage"
	healthPath = "/health"
	uptimePath = "/metrics/process.uptime"

	maxErrorBody = 4 << 10
)

// Client talks to one management endpoint.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for baseURL, e.g. http://localhost:8081/actuator.
// A zero timeout means requests are bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the endpoint root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetHTTPTraces fetches the recorded HTTP exchanges.
func (c *Client) GetHTTPTraces(ctx context.Context) ([]models.Trace, error) {
	var list models.TraceList
	if err := c.getJSON(ctx, tracesPath, &list); err != nil {
		return nil, err
	}
	if list.Traces == nil {
		list.Traces = []models.Trace{}
	}
	return list.Traces, nil
}

// GetSystemCPU fetches the system.cpu.usage metric.
func (c *Client) GetSystemCPU(ctx context.Context) (*models.Metric, error) {
	var m models.Metric
	if err := c.getJSON(ctx, cpuPath, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetSystemHealth fetches the health report.
func (c *Client) GetSystemHealth(ctx context.Context) (*models.SystemHealth, error) {
	var h models.SystemHealth
	if err := c.getJSON(ctx, healthPath, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetProcessUptime fetches the process.uptime metric used to seed the uptime counter.
func (c *Client) GetProcessUptime(ctx context.Context) (*models.Metric, error) {
	var m models.Metric
	if err := c.getJSON(ctx, uptimePath, &m); err != nil {
		return nil, err
	}
	if len(m.Measurements) == 0 {
		return nil, errors.Errorf("%s%s returned no measurements", c.baseURL, uptimePath)
	}
	return &m, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "create request to %s", url)
	}
	req.Header.Set("Accept", "application/json")

	appLogger.Debug("GET %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Wrapf(err, "request to %s timed out", url)
		}
		return errors.Wrapf(err, "request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Errorf("GET %s: server responded with %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode response from %s", url)
	}
	return nil
}
