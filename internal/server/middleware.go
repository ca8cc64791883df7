package server

import (
	"net/http"
	"time"

	"rynko-workers/internal/common/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware logs one line per request. Probe and metrics scrapes
// are logged at debug.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]interface{}{
				"requestId": middleware.GetReqID(r.Context()),
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    status,
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("Request failed", fields)
			case isProbe(r.URL.Path):
				log.Debug("Request completed", fields)
			default:
				log.Info("Request completed", fields)
			}
		})
	}
}

func isProbe(path string) bool {
	return path == "/health" || path == "/ready" || path == "/metrics"
}
