package models

import "time"

// DatasetState tracks a single dataset through uninitialized -> loading -> loaded.
type DatasetState string

const (
	StateUninitialized DatasetState = "uninitialized"
	StateLoading       DatasetState = "loading"
	StateLoaded        DatasetState = "loaded"
)

type DatasetStates struct {
	Traces DatasetState `json:"traces"`
	CPU    DatasetState `json:"cpu"`
	Health DatasetState `json:"health"`
	Uptime DatasetState `json:"uptime"`
}

// TraceBuckets partitions traces by response status. Order within each bucket is fetch order.
type TraceBuckets struct {
	OK          []Trace `json:"http200"`
	BadRequest  []Trace `json:"http400"`
	NotFound    []Trace `json:"http404"`
	ServerError []Trace `json:"http500"`
	Other       []Trace `json:"httpDefault"`
}

// Len is the total number of traces across all buckets.
func (b TraceBuckets) Len() int {
	return len(b.OK) + len(b.BadRequest) + len(b.NotFound) + len(b.ServerError) + len(b.Other)
}

// For the bar and pie charts
type ChartData struct {
	Type             string   `json:"type"` // bar, pie
	Labels           []string `json:"labels"`
	Values           []int    `json:"values"`
	BackgroundColors []string `json:"backgroundColors"`
	BorderColors     []string `json:"borderColors"`
	BorderWidth      int      `json:"borderWidth"`
	Caption          string   `json:"caption"`
	ShowLegend       bool     `json:"showLegend"`
	BeginAtZero      bool     `json:"beginAtZero"`
}

type Charts struct {
	Bar ChartData `json:"bar"`
	Pie ChartData `json:"pie"`
}

type UptimeView struct {
	Seconds int64  `json:"seconds"`
	Display string `json:"display"` // HHhMMmSSs
}

// Alert is a user facing failure notice carrying the raw transport error.
type Alert struct {
	Dataset string    `json:"dataset"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Snapshot struct {
	Traces     []Trace       `json:"traces"`
	Buckets    TraceBuckets  `json:"buckets"`
	CPU        *Metric       `json:"cpu,omitempty"`
	Health     *SystemHealth `json:"health,omitempty"`
	Uptime     UptimeView    `json:"uptime"`
	States     DatasetStates `json:"states"`
	Charts     Charts        `json:"charts"`
	Alerts     []Alert       `json:"alerts"`
	PageSize   int           `json:"pageSize"`
	UpdatedAt  *time.Time    `json:"updatedAt,omitempty"`
	UpdatedAgo string        `json:"updatedAgo,omitempty"`
}

type TracePage struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
	Traces     []Trace `json:"traces"`
}

// HistoryPoint is one aggregated bucket-count sample read back from InfluxDB.
type HistoryPoint struct {
	Timestamp   string `json:"timestamp"`
	OK          int64  `json:"http200"`
	BadRequest  int64  `json:"http400"`
	NotFound    int64  `json:"http404"`
	ServerError int64  `json:"http500"`
	Other       int64  `json:"httpDefault"`
}

// BucketCounts is what gets recorded per classification.
type BucketCounts struct {
	CollectedAt time.Time
	OK          int
	BadRequest  int
	NotFound    int
	ServerError int
	Other       int
	CPUUsage    *float64
}
