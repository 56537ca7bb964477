package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceResponse_StatusDecoding(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   int
		wantOK bool
	}{
		{"integer", `{"status":200}`, 200, true},
		{"integral float", `{"status":404.0}`, 404, true},
		{"fractional", `{"status":200.5}`, 0, false},
		{"out of range", `{"status":1e20}`, 0, false},
		{"negative out of range", `{"status":-3000000000}`, 0, false},
		{"string", `{"status":"500"}`, 0, false},
		{"null", `{"status":null}`, 0, false},
		{"missing", `{"headers":{}}`, 0, false},
		{"not an object", `null`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Trace
			require.NoError(t, json.Unmarshal([]byte(`{"response":`+tt.body+`}`), &tr))
			got, ok := tr.StatusCode()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTraceList_SpringShape(t *testing.T) {
	body := `{"traces":[{
		"timestamp":"2023-04-01T10:15:30.123Z",
		"principal":null,
		"session":null,
		"request":{"method":"GET","uri":"http://localhost:8080/api/users","headers":{"accept":["application/json"]},"remoteAddress":null},
		"response":{"status":200,"headers":{"Content-Type":["application/json"]}},
		"timeTaken":12
	}]}`

	var list TraceList
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Traces, 1)

	tr := list.Traces[0]
	assert.Equal(t, "GET", tr.Request.Method)
	assert.Equal(t, "http://localhost:8080/api/users", tr.Request.URI)
	assert.Equal(t, []string{"application/json"}, tr.Response.Headers["Content-Type"])
	assert.Equal(t, int64(12), tr.TimeTaken)
	assert.Nil(t, tr.Principal)
	code, ok := tr.StatusCode()
	assert.True(t, ok)
	assert.Equal(t, 200, code)
}

func TestTraceList_LenientMetadata(t *testing.T) {
	body := `{"traces":[
		{"timestamp":1700000000.5,"request":{"method":"GET","uri":"/a"},"response":{"status":200},"timeTaken":3},
		{"timestamp":1700000000123,"request":{"method":"GET","uri":"/b"},"response":{"status":404},"timeTaken":"7"},
		{"timestamp":{"epochSecond":1},"request":{"method":"POST","uri":"/c"},"response":{"status":500},"timeTaken":true},
		{"timestamp":"yesterday","request":{"method":"GET","uri":"/d"},"response":{"status":400},"timeTaken":null}
	]}`

	var list TraceList
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Traces, 4, "one odd trace must not discard the others")

	assert.Equal(t, time.Unix(1700000000, 500000000).UTC(), list.Traces[0].Timestamp)
	assert.Equal(t, int64(3), list.Traces[0].TimeTaken)

	assert.Equal(t, time.UnixMilli(1700000000123).UTC(), list.Traces[1].Timestamp)
	assert.Equal(t, int64(7), list.Traces[1].TimeTaken)
	code, ok := list.Traces[1].StatusCode()
	require.True(t, ok)
	assert.Equal(t, 404, code)

	assert.True(t, list.Traces[2].Timestamp.IsZero())
	assert.Equal(t, int64(0), list.Traces[2].TimeTaken)
	assert.Equal(t, "POST", list.Traces[2].Request.Method)

	assert.True(t, list.Traces[3].Timestamp.IsZero())
	assert.Equal(t, int64(0), list.Traces[3].TimeTaken)
}

func TestSystemHealth_DetailsAndComponents(t *testing.T) {
	legacy := `{"status":"UP","details":{"diskSpace":{"status":"UP","details":{"total":1000,"free":500,"threshold":10}}}}`
	current := `{"status":"UP","components":{"diskSpace":{"status":"UP","details":{"total":1000,"free":400,"threshold":10,"exists":true}},"ping":{"status":"UP"}}}`

	var h1, h2 SystemHealth
	require.NoError(t, json.Unmarshal([]byte(legacy), &h1))
	require.NoError(t, json.Unmarshal([]byte(current), &h2))

	require.NotNil(t, h1.Details.DiskSpace)
	assert.Equal(t, uint64(500), h1.Details.DiskSpace.Details.Free)
	require.NotNil(t, h2.Details.DiskSpace)
	assert.Equal(t, uint64(400), h2.Details.DiskSpace.Details.Free)
	require.NotNil(t, h2.Details.Ping)
	assert.Equal(t, "UP", h2.Details.Ping.Status)
}

func TestMetric_FirstValue(t *testing.T) {
	var m Metric
	require.NoError(t, json.Unmarshal([]byte(`{"name":"process.uptime","baseUnit":"seconds","measurements":[{"statistic":"VALUE","value":3661.4}],"availableTags":[]}`), &m))
	v, ok := m.FirstValue()
	assert.True(t, ok)
	assert.InDelta(t, 3661.4, v, 1e-9)

	_, ok = Metric{}.FirstValue()
	assert.False(t, ok)
}

func TestMetric_MisspeltMeasurementsKey(t *testing.T) {
	var m Metric
	require.NoError(t, json.Unmarshal([]byte(`{"name":"system.cpu.usage","measurments":[{"statistic":"VALUE","value":0.31}]}`), &m))
	v, ok := m.FirstValue()
	require.True(t, ok)
	assert.InDelta(t, 0.31, v, 1e-9)
	assert.Equal(t, "system.cpu.usage", m.Name)

	var both Metric
	require.NoError(t, json.Unmarshal([]byte(`{"measurements":[{"value":1}],"measurments":[{"value":2}]}`), &both))
	v, _ = both.FirstValue()
	assert.Equal(t, 1.0, v, "the correctly spelt key wins")
}

func TestTraceBuckets_Len(t *testing.T) {
	b := TraceBuckets{
		OK:    make([]Trace, 3),
		Other: make([]Trace, 2),
	}
	assert.Equal(t, 5, b.Len())
}
