// Package stats samples the local host with gopsutil and shapes the results like
// a Spring Boot management endpoint, so the dashboard can run against this
// process instead of a real backend.
package stats

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
)

// Spring's default free space threshold (10 MB)
const DefaultDiskThreshold uint64 = 10 * 1024 * 1024

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

/* <---------------- CPU INFO -----------------> */

// CPUMetric samples overall CPU usage over interval and reports it as a 0..1 ratio.
func CPUMetric(ctx context.Context, interval time.Duration) (*models.Metric, error) {
	percent, err := cpu.PercentWithContext(ctx, interval, false) // false -> overall percentage
	if err != nil {
		return nil, fmt.Errorf("error getting CPU usage: %w", err)
	}
	if len(percent) == 0 {
		return nil, fmt.Errorf("could not retrieve CPU usage percentage")
	}
	usage := math.Round(percent[0]*100) / 10000

	return &models.Metric{
		Name:          "system.cpu.usage",
		Description:   "The \"recent cpu usage\" for the whole system",
		Measurements:  []models.Measurement{{Statistic: "VALUE", Value: usage}},
		AvailableTags: []models.MetricTag{},
	}, nil
}

/* <---------------- DISK / HEALTH -----------------> */

// HealthReport checks free space on path against threshold.
func HealthReport(ctx context.Context, path string, threshold uint64) (*models.SystemHealth, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error getting disk usage for %s: %w", path, err)
	}
	return diskHealth(usage.Total, usage.Free, threshold), nil
}

func diskHealth(total, free, threshold uint64) *models.SystemHealth {
	status := StatusUp
	if free < threshold {
		status = StatusDown
	}
	return &models.SystemHealth{
		Status: status,
		Details: models.HealthDetails{
			DiskSpace: &models.DiskSpaceHealth{
				Status: status,
				Details: models.DiskSpaceDetails{
					Total:     total,
					Free:      free,
					Threshold: threshold,
					Exists:    true,
				},
			},
			Ping: &models.ComponentHealth{Status: StatusUp},
		},
	}
}

/* <----------------  PROCESS UPTIME -----------------> */

// UptimeMetric reports how long the current process has been running, in seconds.
func UptimeMetric(ctx context.Context) (*models.Metric, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("error opening own process: %w", err)
	}
	created, err := proc.CreateTimeWithContext(ctx) // milliseconds since epoch
	if err != nil {
		return nil, fmt.Errorf("error getting process create time: %w", err)
	}
	return uptimeMetric(time.Now(), time.UnixMilli(created)), nil
}

func uptimeMetric(now, started time.Time) *models.Metric {
	seconds := now.Sub(started).Seconds()
	if seconds < 0 {
		seconds = 0
	}
	return &models.Metric{
		Name:          "process.uptime",
		Description:   "The uptime of the process",
		BaseUnit:      "seconds",
		Measurements:  []models.Measurement{{Statistic: "VALUE", Value: seconds}},
		AvailableTags: []models.MetricTag{},
	}
}
