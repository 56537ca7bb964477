package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(method, uri string, status *int) models.Trace {
	return models.Trace{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 3, 0, time.UTC),
		Request:   models.TraceRequest{Method: method, URI: uri},
		Response:  models.TraceResponse{Status: status},
		TimeTaken: 12,
	}
}

func TestWriteTraceTable(t *testing.T) {
	ok := 200
	var buf bytes.Buffer
	err := WriteTraceTable(&buf, []models.Trace{
		trace("GET", "http://localhost/a?x=1&y=<2>", &ok),
		trace("POST", "http://localhost/b", nil),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<table id="httptrace-table"`))
	assert.Contains(t, out, "<td>2024-05-01 12:00:03</td><td>GET</td><td>12 ms</td>")
	assert.Contains(t, out, "&amp;y=&lt;2&gt;", "uri is escaped")
	assert.Contains(t, out, "<td>200</td></tr>")
	assert.Contains(t, out, "<td>http://localhost/b</td><td></td></tr>")
	assert.Equal(t, 2, strings.Count(out, "<tr><td>"))
}

func TestWriteTraceTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTraceTable(&buf, nil))
	assert.Contains(t, buf.String(), "<tbody>\n</tbody>")
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="httptrace.xls"`, ContentDisposition())
}
