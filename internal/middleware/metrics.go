package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fitspace/avatar-service/internal/metrics"
)

// Metrics returns a middleware that records request counts, durations and
// in-flight gauge for every request. Paths are labelled with the mux route
// template to keep cardinality bounded.
func Metrics() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTPRequest(
				r.Method,
				routePattern(r),
				strconv.Itoa(wrapped.statusCode),
				time.Since(start),
			)
		})
	}
}
