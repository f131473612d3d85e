package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Logging returns a middleware that logs every HTTP request. It logs the
// method, route pattern, status code, user ID, and duration.
func Logging() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Milliseconds()
			attrs := []any{
				"method", r.Method,
				"path", routePattern(r),
				"status", wrapped.statusCode,
				"user_id", GetUserID(r.Context()), // empty if pre-auth
				"duration_ms", duration,
			}

			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				slog.Error("HTTP error", attrs...)
			case wrapped.statusCode >= http.StatusBadRequest:
				slog.Warn("HTTP error", attrs...)
			default:
				slog.Info("HTTP ok", attrs...)
			}
		})
	}
}

// routePattern returns the mux route template when available, falling back
// to the raw path. Templates keep log cardinality bounded.
func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
