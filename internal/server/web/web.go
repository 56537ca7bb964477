// Package web holds the embedded dashboard page and its static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// IndexTemplate is the name of the dashboard page template.
const IndexTemplate = "index.html"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

var funcs = template.FuncMap{
	"percent": func(m *models.Metric) string {
		if m == nil {
			return ""
		}
		v, ok := m.FirstValue()
		if !ok {
			return ""
		}
		return fmt.Sprintf("%.2f %%", v*100)
	},
	"status": func(t models.Trace) string {
		code, ok := t.StatusCode()
		if !ok {
			return ""
		}
		return fmt.Sprint(code)
	},
	"stamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
	"loaded": func(s models.DatasetState) bool {
		return s == models.StateLoaded
	},
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

func assets() static.ServeFileSystem {
	fs, err := static.EmbedFolder(assetsFS, "assets")
	if err != nil {
		panic("failed to get embedded assets filesystem: " + err.Error())
	}
	return fs
}

// Mount installs the page templates and serves the assets under /assets.
func Mount(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())
	r.Use(static.Serve("/assets", assets()))
}
