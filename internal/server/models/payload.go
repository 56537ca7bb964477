package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/valyala/fastjson"
)

// --- These structs mirror what the management endpoint sends ---

type TracePrincipal struct {
	Name string `json:"name"`
}

type TraceSession struct {
	ID string `json:"id"`
}

type TraceRequest struct {
	Method        string              `json:"method"`
	URI           string              `json:"uri"`
	Headers       map[string][]string `json:"headers,omitempty"`
	RemoteAddress string              `json:"remoteAddress,omitempty"`
}

// TraceResponse holds the response half of a recorded exchange.
// Status is nil when the backend sent no status or a value that is not an integral number.
type TraceResponse struct {
	Status  *int                `json:"status"`
	Headers map[string][]string `json:"headers,omitempty"`
}

func (r *TraceResponse) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return err
	}
	*r = TraceResponse{}
	if v.Type() != fastjson.TypeObject {
		return nil
	}
	r.Status = statusCode(v.Get("status"))

	if h := v.Get("headers"); h != nil && h.Type() == fastjson.TypeObject {
		var headers map[string][]string
		if err := json.Unmarshal(h.MarshalTo(nil), &headers); err == nil {
			r.Headers = headers
		}
	}
	return nil
}

func statusCode(v *fastjson.Value) *int {
	if v == nil || v.Type() != fastjson.TypeNumber {
		return nil
	}
	f, err := v.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil
	}
	code := int(f)
	return &code
}

// Trace is one recorded HTTP exchange.
type Trace struct {
	ID        string          `json:"id"` // assigned on fetch, not sent by the backend
	Timestamp time.Time       `json:"timestamp"`
	Principal *TracePrincipal `json:"principal,omitempty"`
	Session   *TraceSession   `json:"session,omitempty"`
	Request   TraceRequest    `json:"request"`
	Response  TraceResponse   `json:"response"`
	TimeTaken int64           `json:"timeTaken"` // milliseconds
}

// UnmarshalJSON decodes timestamp and timeTaken leniently: a value of an
// unexpected type becomes the zero value instead of failing the whole trace list.
func (t *Trace) UnmarshalJSON(data []byte) error {
	type plain Trace
	var aux struct {
		plain
		Timestamp json.RawMessage `json:"timestamp"`
		TimeTaken json.RawMessage `json:"timeTaken"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Trace(aux.plain)
	t.Timestamp = traceTimestamp(aux.Timestamp)
	t.TimeTaken = traceMillis(aux.TimeTaken)
	return nil
}

// traceTimestamp accepts an RFC 3339 string or epoch seconds/milliseconds.
func traceTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return time.Time{}
	}
	switch v.Type() {
	case fastjson.TypeString:
		ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes()))
		if err != nil {
			return time.Time{}
		}
		return ts
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil || f <= 0 || math.IsInf(f, 0) {
			return time.Time{}
		}
		if f >= 1e11 { // milliseconds, as older backends send
			return time.UnixMilli(int64(f)).UTC()
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return time.Time{}
}

// traceMillis accepts a number or a numeric string.
func traceMillis(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return 0
	}
	var f float64
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err = v.Float64()
	case fastjson.TypeString:
		f, err = strconv.ParseFloat(string(v.GetStringBytes()), 64)
	default:
		return 0
	}
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int64(f)
}

// StatusCode returns the response status and whether one was present.
func (t Trace) StatusCode() (int, bool) {
	if t.Response.Status == nil {
		return 0, false
	}
	return *t.Response.Status, true
}

// TraceList is the envelope of the httptrace endpoint.
type TraceList struct {
	Traces []Trace `json:"traces"`
}

type Measurement struct {
	Statistic string  `json:"statistic"`
	Value     float64 `json:"value"`
}

type MetricTag struct {
	Tag    string   `json:"tag"`
	Values []string `json:"values"`
}

// Metric is a single metrics endpoint record, e.g. system.cpu.usage or process.uptime.
type Metric struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	BaseUnit      string        `json:"baseUnit"`
	Measurements  []Measurement `json:"measurements"`
	AvailableTags []MetricTag   `json:"availableTags"`
}

// UnmarshalJSON also accepts the misspelt "measurments" key some backends send.
func (m *Metric) UnmarshalJSON(data []byte) error {
	type plain Metric
	var aux struct {
		plain
		Misspelt []Measurement `json:"measurments"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Metric(aux.plain)
	if len(m.Measurements) == 0 && len(aux.Misspelt) > 0 {
		m.Measurements = aux.Misspelt
	}
	return nil
}

// FirstValue returns the value of the first measurement.
func (m Metric) FirstValue() (float64, bool) {
	if len(m.Measurements) == 0 {
		return 0, false
	}
	return m.Measurements[0].Value, true
}

type DiskSpaceDetails struct {
	Total     uint64 `json:"total"`
	Free      uint64 `json:"free"`
	Threshold uint64 `json:"threshold"`
	Exists    bool   `json:"exists"`
	// FreeDisplay is filled in after fetch with the human readable form of Free.
	FreeDisplay string `json:"freeDisplay,omitempty"`
}

type DiskSpaceHealth struct {
	Status  string           `json:"status"`
	Details DiskSpaceDetails `json:"details"`
}

type ComponentHealth struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type HealthDetails struct {
	DiskSpace *DiskSpaceHealth `json:"diskSpace,omitempty"`
	DB        *ComponentHealth `json:"db,omitempty"`
	Ping      *ComponentHealth `json:"ping,omitempty"`
}

// SystemHealth is the health endpoint report. Newer backends nest components
// under "components" instead of "details"; both are accepted.
type SystemHealth struct {
	Status  string        `json:"status"`
	Details HealthDetails `json:"details"`
}

func (h *SystemHealth) UnmarshalJSON(data []byte) error {
	var aux struct {
		Status     string         `json:"status"`
		Details    *HealthDetails `json:"details"`
		Components *HealthDetails `json:"components"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	h.Status = aux.Status
	switch {
	case aux.Details != nil:
		h.Details = *aux.Details
	case aux.Components != nil:
		h.Details = *aux.Components
	default:
		h.Details = HealthDetails{}
	}
	return nil
}
