// Package exporter dumps the trace table markup as a spreadsheet download.
// Spreadsheet applications open the HTML table directly, so no file format is generated.
package exporter

import (
	"fmt"
	"html/template"
	"io"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
)

const (
	Filename    = "httptrace.xls"
	ContentType = "application/vnd.ms-excel"
	TableID     = "httptrace-table"
)

const timestampLayout = "2006-01-02 15:04:05"

var tableTemplate = template.Must(template.New("httptrace-table").Funcs(template.FuncMap{
	"status": statusText,
	"stamp":  func(t time.Time) string { return t.Format(timestampLayout) },
}).Parse(`<table id="{{ .ID }}" class="table table-striped">
<thead>
<tr><th>Time Stamp</th><th>Method</th><th>Time Taken</th><th>Path</th><th>Status</th></tr>
</thead>
<tbody>
{{- range .Traces }}
<tr><td>{{ stamp .Timestamp }}</td><td>{{ .Request.Method }}</td><td>{{ .TimeTaken }} ms</td><td>{{ .Request.URI }}</td><td>{{ status . }}</td></tr>
{{- end }}
</tbody>
</table>
`))

func statusText(t models.Trace) string {
	code, ok := t.StatusCode()
	if !ok {
		return ""
	}
	return fmt.Sprint(code)
}

// WriteTraceTable renders the trace table markup to w.
func WriteTraceTable(w io.Writer, traces []models.Trace) error {
	data := struct {
		ID     string
		Traces []models.Trace
	}{ID: TableID, Traces: traces}

	if err := tableTemplate.Execute(w, data); err != nil {
		appLogger.Error("Error rendering trace table: %v", err)
		return fmt.Errorf("error rendering trace table: %w", err)
	}
	appLogger.Debug("Rendered trace table with %d rows", len(traces))
	return nil
}

// ContentDisposition is the header value that makes browsers save the export as Filename.
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", Filename)
}
