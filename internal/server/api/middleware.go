package api

import (
	"net/http"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
)

// RequestLogger logs every request, at Warn for 4xx and Error for 5xx.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)

		status := c.Writer.Status()
		logFunc := appLogger.Info
		if status >= 400 && status < 500 {
			logFunc = appLogger.Warn
		} else if status >= 500 {
			logFunc = appLogger.Error
		}

		logFunc("GIN | %3d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
		)
	}
}

// Compress gzips responses for clients that accept it. Websocket upgrades
// bypass the gzip writer, which cannot be hijacked.
func Compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
