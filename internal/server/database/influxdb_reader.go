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
	"github.com/influxdata/influxdb-client-go/v2/api/query"
)

type InfluxDBReader struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	source   string
	org      string
	bucket   string
}

// NewInfluxDBReader creates a new InfluxDBReader.
func NewInfluxDBReader(cfg config.InfluxDBConfig, source string) (*InfluxDBReader, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := checkHealth(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}
	appLogger.Info("InfluxDBReader successfully connected to InfluxDB at %s", cfg.URL)

	return &InfluxDBReader{
		client:   client,
		queryAPI: client.QueryAPI(cfg.Org),
		source:   source,
		org:      cfg.Org,
		bucket:   cfg.Bucket,
	}, nil
}

func historyQuery(bucket, source string, rangeStart, aggregateInterval time.Duration) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: -%s)
			|> filter(fn: (r) => r._measurement == "%s" and r.source == "%s")
			|> filter(fn: (r) => r._field == "http200" or r._field == "http400" or r._field == "http404" or r._field == "http500" or r._field == "httpDefault")
			|> aggregateWindow(every: %s, fn: last, createEmpty: false)
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> yield(name: "history")
	`, bucket, rangeStart.String(), bucketMeasurement, source, aggregateInterval.String())
}

// GetBucketHistory returns bucket sizes over the last rangeStart, one point per aggregateInterval.
func (r *InfluxDBReader) GetBucketHistory(ctx context.Context, rangeStart, aggregateInterval time.Duration) ([]models.HistoryPoint, error) {
	if rangeStart <= 0 || aggregateInterval <= 0 {
		return nil, fmt.Errorf("range and aggregate interval must be positive")
	}

	q := historyQuery(r.bucket, r.source, rangeStart, aggregateInterval)
	appLogger.Debug("GetBucketHistory Query:\n%s", q)
	results, err := r.queryAPI.Query(ctx, q)
	if err != nil {
		appLogger.Error("InfluxDB query failed for GetBucketHistory: %v", err)
		return nil, fmt.Errorf("query influxdb for bucket history: %w", err)
	}

	var points []models.HistoryPoint
	for results.Next() {
		points = append(points, historyPoint(results.Record()))
	}
	if results.Err() != nil {
		appLogger.Error("Error processing results for GetBucketHistory: %v", results.Err())
		return nil, fmt.Errorf("process query results for bucket history: %w", results.Err())
	}
	return points, nil
}

func historyPoint(record *query.FluxRecord) models.HistoryPoint {
	// Flux returns integer fields as int64, but aggregation may turn them into floats
	getI := func(key string) int64 {
		switch v := record.ValueByKey(key).(type) {
		case int64:
			return v
		case float64:
			return int64(v)
		default:
			return 0
		}
	}
	return models.HistoryPoint{
		Timestamp:   record.Time().In(time.Local).Format("15:04"),
		OK:          getI("http200"),
		BadRequest:  getI("http400"),
		NotFound:    getI("http404"),
		ServerError: getI("http500"),
		Other:       getI("httpDefault"),
	}
}

// Close cleans up resources.
func (r *InfluxDBReader) Close() {
	if r.client != nil {
		r.client.Close()
		appLogger.Info("InfluxDBReader client closed.")
	}
}
