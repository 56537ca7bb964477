package database

import (
	"context"
	"fmt"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/config"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const bucketMeasurement = "trace_buckets"

// handles writing bucket-count snapshots to InfluxDB
type InfluxDBWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	source   string
	org      string
	bucket   string
}

// NewInfluxDBWriter connects to InfluxDB. source tags every point, normally the actuator base URL.
func NewInfluxDBWriter(cfg config.InfluxDBConfig, source string) (*InfluxDBWriter, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Check connectivity, with a timeout for the health check
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := checkHealth(ctx, client); err != nil {
		client.Close()
		appLogger.Error("InfluxDB health check failed: %v", err)
		return nil, err
	}
	appLogger.Info("Successfully connected to InfluxDB at %s", cfg.URL)

	return &InfluxDBWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		source:   source,
		org:      cfg.Org,
		bucket:   cfg.Bucket,
	}, nil
}

func checkHealth(ctx context.Context, client influxdb2.Client) error {
	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("influxdb not healthy: status %s %s", health.Status, msg)
	}
	return nil
}

// bucketPoint converts one classification result into an InfluxDB point.
func bucketPoint(source string, counts models.BucketCounts) *write.Point {
	tags := map[string]string{
		"source": source,
	}
	fields := map[string]interface{}{
		"http200":     counts.OK,
		"http400":     counts.BadRequest,
		"http404":     counts.NotFound,
		"http500":     counts.ServerError,
		"httpDefault": counts.Other,
		"total":       counts.OK + counts.BadRequest + counts.NotFound + counts.ServerError + counts.Other,
	}
	if counts.CPUUsage != nil {
		fields["cpu_usage"] = *counts.CPUUsage
	}
	return write.NewPoint(bucketMeasurement, tags, fields, counts.CollectedAt)
}

// RecordBuckets writes the bucket sizes of one classification.
func (w *InfluxDBWriter) RecordBuckets(ctx context.Context, counts models.BucketCounts) error {
	if err := w.writeAPI.WritePoint(ctx, bucketPoint(w.source, counts)); err != nil {
		appLogger.Error("Failed to write %s point to InfluxDB for %s: %v", bucketMeasurement, w.source, err)
		return fmt.Errorf("influxdb write point error for %s: %w", bucketMeasurement, err)
	}
	appLogger.Debug("Wrote %s point for %s at %s", bucketMeasurement, w.source, counts.CollectedAt)
	return nil
}

// Close ensures the InfluxDB client is closed gracefully.
func (w *InfluxDBWriter) Close() {
	if w.client != nil {
		w.client.Close()
		appLogger.Info("InfluxDB client closed.")
	}
}
